package query

import "strings"

// LikeEscape follows every LIKE built from Contains.
const LikeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains lower-cases search and turns it into a LIKE pattern matching it
// anywhere. Wildcards typed by the user match literally. A blank search
// reports false.
func Contains(search string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return "", false
	}
	return "%" + likeEscaper.Replace(needle) + "%", true
}
