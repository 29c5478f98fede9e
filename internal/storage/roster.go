package storage

import "golang.org/x/text/unicode/norm"

// RosterEntry is one seeded student: display name and reg number.
type RosterEntry struct {
	Name      string
	RegNumber string
}

// roster is the fixed class list seeded on first initialisation.
var roster = []RosterEntry{
	{"Arsalan Khalil", "2023130"},
	{"Hamza Mukhtar", "2023682"},
	{"Abdul Raffay bin Ilyas", "2023021"},
	{"Muhammad", "2023339"},
	{"Muhammad Usman Nazir", "2023546"},
	{"Muhammad Hamza khan", "2023425"},
	{"Abdul Ahad Ali Khan", "2023004"},
	{"Muhammad Umer Farooq", "2023540"},
	{"Riyan khan Durrani", "2023611"},
	{"Hamza Saeed", "2023903"},
	{"Muhammad Umar", "2023535"},
	{"Zain", "2023773"},
	{"Hashir", "2023429"},
	{"Bushrah Zulfiqar", "2023165"},
	{"Syeda Masooma Shah", "2023705"},
	{"Warisha Arshad", "2023757"},
	{"Rameen Zia", "2023594"},
	{"Shumaz saeed", "2023662"},
	{"Nishat Ahmed", "2023574"},
	{"Muhammad Rohaan Mirza", "2023495"},
	{"Ahmad Saeed Zaidi", "2023073"},
	{"Saad Khurshid", "2023622"},
}

// Roster returns a copy of the seed list with names in Unicode NFC form,
// so byte-wise ordering and comparison are stable across engines.
func Roster() []RosterEntry {
	out := make([]RosterEntry, len(roster))
	for i, e := range roster {
		out[i] = RosterEntry{Name: norm.NFC.String(e.Name), RegNumber: e.RegNumber}
	}
	return out
}

// RosterSize is the number of students eligible to submit.
func RosterSize() int { return len(roster) }
