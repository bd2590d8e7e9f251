// Package output renders notechain-cli results as table, JSON or YAML.
//
// Values that know their own layout implement TableViewer; anything else
// shown as a table falls back to a FIELD/VALUE listing of a struct, or to
// JSON for shapes a table cannot express.
package output
