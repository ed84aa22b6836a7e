// Package domain models the municipal tree inventory published by the
// Métropole de Lyon open-data portal and the cleaning pass that turns its raw
// rows into typed records.
//
// # Data Source
//
// The inventory is distributed as a semicolon-delimited CSV export with one
// row per tree and French column names (codegenre, genre, espece, ...). The
// header row drives column binding; see [Schema] for the columns the cleaning
// pass depends on.
//
// # Source Data Conventions
//
// Genus codes:
//
//	"0" and "1" are not genera. They mark trees whose classification is
//	missing ("Non renseigné" / "Inconnu") and such rows are discarded.
//
// Planting dates:
//
//	"anneeplantation" carries the planting year, sometimes as a full date.
//	"dateplantation" carries the planting day as YYYY-MM-DD. Older exports
//	lack the second column, in which case the date is read from the first.
//	Years before 1900 are placeholder values entered for unknown dates and
//	the row is discarded. An empty value means "never recorded".
//
// Measurements:
//
//	circonference_cm (centimetres) and hauteurtotale_m (metres) are integers.
//	"0" is the surveyors' sentinel for "not measured" and maps to nil, as does
//	an empty cell.
//
// Coordinates:
//
//	lon and lat are WGS-84 degrees written with a decimal comma ("4,835").
//	They are not range checked.
//
// # Identifiers
//
// Cleaned records carry a dense zero-based identifier assigned in the order
// rows survive filtering. Dropped rows leave no gaps, so the identifier is a
// position in the cleaned file, not a reference to the source line.
package domain
