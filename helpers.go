package folio

import "strings"

// FilterEmpty trims every value and drops the blank ones.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitTags parses the comma-separated tag input of the editor form.
func SplitTags(input string) []string {
	return FilterEmpty(strings.Split(input, ","))
}
