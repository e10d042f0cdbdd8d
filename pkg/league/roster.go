package league

import (
	"strings"
	"unicode"

	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/util"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minFuzzyScore is the similarity a name needs to be accepted by fuzzy matching
const minFuzzyScore = 0.8

// Roster resolves the many spellings external sources use for a team
type Roster struct {
	names   map[int]string
	aliases map[string]int
}

// Aliases as they appear on API-Football and BDFutbol
var defaultAliases = map[string]int{
	"Tenerife":                1,
	"Celta B":                 2,
	"Celta Fortuna":           2,
	"Celta Vigo B":            2,
	"Pontevedra":              3,
	"Athletic Club B":         4,
	"Athletic Bilbao B":       4,
	"Racing de Ferrol":        5,
	"Racing Ferrol":           5,
	"Real Madrid B":           6,
	"Castilla":                6,
	"Lugo":                    7,
	"Zamora":                  8,
	"Aviles":                  9,
	"Real Aviles":             9,
	"Aviles Industrial":       9,
	"Barakaldo":               10,
	"Merida":                  11,
	"Unionistas":              12,
	"Unionistas de Salamanca": 12,
	"Arenas":                  13,
	"Arenas de Getxo":         13,
	"Ponferradina":            14,
	"Ourense":                 15,
	"Talavera":                16,
	"Talavera de la Reina":    16,
	"Cacereno":                17,
	"Arenteiro":               18,
	"Osasuna B":               19,
	"CA Osasuna B":            19,
	"Osasuna Promesas":        19,
	"Guadalajara":             20,
}

// NewRoster builds a roster from the teams' official names plus the known
// aliases for those ids
func NewRoster(teams []Team) *Roster {
	r := &Roster{
		names:   make(map[int]string, len(teams)),
		aliases: make(map[string]int),
	}
	for _, t := range teams {
		r.names[t.ID] = t.Name
		r.aliases[Normalize(t.Name)] = t.ID
	}
	for alias, id := range defaultAliases {
		if _, ok := r.names[id]; ok {
			r.aliases[Normalize(alias)] = id
		}
	}
	return r
}

// DefaultRoster is the roster of the seeded league
func DefaultRoster() *Roster {
	return NewRoster(DefaultTeams())
}

// AddAlias registers an extra spelling for a team
func (r *Roster) AddAlias(alias string, id int) {
	r.aliases[Normalize(alias)] = id
}

// Name returns the official name of a team
func (r *Roster) Name(id int) string {
	return r.names[id]
}

// Resolve maps an external team name to a team id.
// Exact alias first, then substring containment, then fuzzy similarity.
func (r *Roster) Resolve(name string) (int, bool) {
	n := Normalize(name)
	if n == "" {
		return 0, false
	}
	if id, ok := r.aliases[n]; ok {
		return id, true
	}

	// longest alias wins so "real aviles industrial" beats "aviles"
	bestID, bestLen := 0, 0
	for alias, id := range r.aliases {
		if strings.Contains(n, alias) || strings.Contains(alias, n) {
			if len(alias) > bestLen || (len(alias) == bestLen && id < bestID) {
				bestID, bestLen = id, len(alias)
			}
		}
	}
	if bestID != 0 {
		return bestID, true
	}

	bestScore := 0.0
	for alias, id := range r.aliases {
		s := util.FuzzyMatchScore(n, alias)
		if s > bestScore || (s == bestScore && id < bestID) {
			bestID, bestScore = id, s
		}
	}
	if bestScore >= minFuzzyScore {
		logger.Debug("Fuzzy matched team name", name, r.names[bestID], bestScore)
		return bestID, true
	}
	logger.Warn("No team mapping found for", name)
	return 0, false
}

// Normalize lowercases, strips accents and collapses whitespace
func Normalize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
