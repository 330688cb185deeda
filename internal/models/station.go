package models

// Station is an immutable reference stop on the SG-TB corridor.
// Aliases are the informal short forms customers write into free-text
// recipient/address fields.
type Station struct {
	Code    int      `json:"code"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// Stations is the canonical stop list. Read-only at runtime; order here is
// not significant, the resolver re-sorts by name length.
var Stations = []Station{
	{Code: 1, Name: "Bến xe Miền Đông", Aliases: []string{"bx miền đông", "miền đông", "bxmd"}},
	{Code: 2, Name: "Ngã tư Amata", Aliases: []string{"amata"}},
	{Code: 3, Name: "Bưu điện Trảng Bom", Aliases: []string{"bưu điện tb", "bđ trảng bom", "tbom"}},
	{Code: 4, Name: "Chợ Sặt", Aliases: []string{"sặt"}},
	{Code: 5, Name: "Ngã ba Hố Nai", Aliases: []string{"hố nai"}},
	{Code: 6, Name: "Bến xe Trảng Bom", Aliases: []string{"bx trảng bom", "bxtb"}},
	{Code: 7, Name: "Ngã ba Trị An", Aliases: []string{"trị an"}},
	{Code: 8, Name: "Chợ Bàu Xéo", Aliases: []string{"bàu xéo"}},
}

// StationByCode returns the station with the given code, or nil.
func StationByCode(code int) *Station {
	for i := range Stations {
		if Stations[i].Code == code {
			return &Stations[i]
		}
	}
	return nil
}

// StationByName returns the station with the given canonical name, or nil.
func StationByName(name string) *Station {
	for i := range Stations {
		if Stations[i].Name == name {
			return &Stations[i]
		}
	}
	return nil
}
