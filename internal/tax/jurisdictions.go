package tax

import "strings"

// Jurisdiction is a provincial tax jurisdiction code.
type Jurisdiction string

// Supported jurisdictions.
const (
	Ontario         Jurisdiction = "ON"
	BritishColumbia Jurisdiction = "BC"
	Alberta         Jurisdiction = "AB"
	Quebec          Jurisdiction = "QC"
	Manitoba        Jurisdiction = "MB"
	Saskatchewan    Jurisdiction = "SK"
	NovaScotia      Jurisdiction = "NS"
	NewBrunswick    Jurisdiction = "NB"
)

// DefaultJurisdiction is used when a code is not mapped.
const DefaultJurisdiction = Ontario

// NormalizeJurisdiction upper-cases and trims a jurisdiction code.
func NormalizeJurisdiction(code string) Jurisdiction {
	return Jurisdiction(strings.ToUpper(strings.TrimSpace(code)))
}

// FederalBrackets is the representative federal schedule.
func FederalBrackets() BracketTable {
	return MustBracketTable(
		S("0", "0.15"),
		S("55867", "0.205"),
		S("111733", "0.26"),
		S("173205", "0.29"),
		S("246752", "0.33"),
	)
}

// JurisdictionBrackets returns the representative provincial schedules.
// Every schedule has the same five-bracket shape as the federal one.
func JurisdictionBrackets() map[Jurisdiction]BracketTable {
	return map[Jurisdiction]BracketTable{
		Ontario: MustBracketTable(
			S("0", "0.0505"),
			S("51446", "0.0915"),
			S("102894", "0.1116"),
			S("150000", "0.1216"),
			S("220000", "0.1316"),
		),
		BritishColumbia: MustBracketTable(
			S("0", "0.0506"),
			S("47937", "0.077"),
			S("95875", "0.105"),
			S("110076", "0.1229"),
			S("133664", "0.147"),
		),
		Alberta: MustBracketTable(
			S("0", "0.10"),
			S("148269", "0.12"),
			S("177922", "0.13"),
			S("237230", "0.14"),
			S("355845", "0.15"),
		),
		Quebec: MustBracketTable(
			S("0", "0.14"),
			S("51780", "0.19"),
			S("103545", "0.24"),
			S("126000", "0.2575"),
			S("250000", "0.2675"),
		),
		Manitoba: MustBracketTable(
			S("0", "0.108"),
			S("47000", "0.1275"),
			S("100000", "0.174"),
			S("200000", "0.179"),
			S("400000", "0.184"),
		),
		Saskatchewan: MustBracketTable(
			S("0", "0.105"),
			S("52057", "0.125"),
			S("148734", "0.145"),
			S("250000", "0.15"),
			S("400000", "0.155"),
		),
		NovaScotia: MustBracketTable(
			S("0", "0.0879"),
			S("29590", "0.1495"),
			S("59180", "0.1667"),
			S("93000", "0.175"),
			S("150000", "0.21"),
		),
		NewBrunswick: MustBracketTable(
			S("0", "0.094"),
			S("49958", "0.14"),
			S("99916", "0.16"),
			S("185064", "0.195"),
			S("300000", "0.2075"),
		),
	}
}
