package enums

import "fmt"

// Region enumerates the Ethiopian administrative regions accepted on a
// shipping address.
type Region string

const (
	RegionAddisAbaba       Region = "addis_ababa"
	RegionAfar             Region = "afar"
	RegionAmhara           Region = "amhara"
	RegionBenishangulGumuz Region = "benishangul_gumuz"
	RegionCentralEthiopia  Region = "central_ethiopia"
	RegionDireDawa         Region = "dire_dawa"
	RegionGambela          Region = "gambela"
	RegionHarari           Region = "harari"
	RegionOromia           Region = "oromia"
	RegionSidama           Region = "sidama"
	RegionSomali           Region = "somali"
	RegionSouthEthiopia    Region = "south_ethiopia"
	RegionSouthWest        Region = "south_west_ethiopia"
	RegionTigray           Region = "tigray"
)

var validRegions = []Region{
	RegionAddisAbaba,
	RegionAfar,
	RegionAmhara,
	RegionBenishangulGumuz,
	RegionCentralEthiopia,
	RegionDireDawa,
	RegionGambela,
	RegionHarari,
	RegionOromia,
	RegionSidama,
	RegionSomali,
	RegionSouthEthiopia,
	RegionSouthWest,
	RegionTigray,
}

// Regions returns the full enumeration in display order.
func Regions() []Region {
	out := make([]Region, len(validRegions))
	copy(out, validRegions)
	return out
}

// String implements fmt.Stringer.
func (r Region) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Region.
func (r Region) IsValid() bool {
	for _, candidate := range validRegions {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRegion converts raw input into a Region.
func ParseRegion(value string) (Region, error) {
	for _, candidate := range validRegions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid region %q", value)
}
