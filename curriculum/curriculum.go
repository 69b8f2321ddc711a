/*
Package curriculum holds the curricula EduSuite schools teach: their levels
(grade bands) and the subjects offered at each level.

PURPOSE:
  A school picks one or more curricula at onboarding. Class setup, timetable
  and report-card screens then ask which levels exist, which subjects a level
  offers and which level to preselect for the kind of institution being set
  up. All of that is answered here from static tables.

KEY CONCEPTS:
  - ID: Closed set of curriculum identifiers. Not every ID has data loaded;
    Get returns nil for those and callers must cope.
  - Level: A grade band such as "junior_secondary", in teaching order
  - Subject: Code + name, unique within a level
  - InstitutionType: Coarse school category used to pick a default level

DEFAULT LEVEL HEURISTIC:
  Each institution type has a list of candidate substrings. The first
  candidate found inside any level ID (levels scanned in order) wins;
  otherwise the first level is returned. This is deliberately fuzzy so it
  copes with every curriculum's naming.

SEE ALSO:
  - tables.go: The curriculum data
  - country/country.go: National grading scales referenced by GradingScaleID
*/
package curriculum

import (
	"fmt"
	"strings"

	"github.com/edusuite/engine/generic"
)

// =============================================================================
// TYPES
// =============================================================================

type ID string

const (
	KenyaCBC        ID = "ke_cbc"
	Kenya844        ID = "ke_844"
	UgandaNLSC      ID = "ug_nlsc"
	TanzaniaNECTA   ID = "tz_necta"
	RwandaCBC       ID = "rw_cbc"
	NigeriaNERDC    ID = "ng_nerdc"
	GhanaNaCCA      ID = "gh_nacca"
	SouthAfricaCAPS ID = "za_caps"
	IGCSE           ID = "igcse"
	IBPYP           ID = "ib_pyp"
	IBMYP           ID = "ib_myp"
	IBDP            ID = "ib_dp"
)

// IDs lists the full enumeration, including curricula without loaded data.
func IDs() []ID {
	return []ID{
		KenyaCBC, Kenya844, UgandaNLSC, TanzaniaNECTA, RwandaCBC, NigeriaNERDC,
		GhanaNaCCA, SouthAfricaCAPS, IGCSE, IBPYP, IBMYP, IBDP,
	}
}

type AgeRange struct {
	Min int
	Max int
}

type Level struct {
	ID             string
	Name           string
	AgeRange       *AgeRange
	GradingScaleID string
}

type Subject struct {
	Code       string
	Name       string
	Compulsory bool
}

// Config is one curriculum. Country is empty for international curricula.
type Config struct {
	ID       ID
	Name     string
	Country  generic.CountryCode
	Levels   []Level
	Subjects map[string][]Subject
}

type InstitutionType string

const (
	InstitutionPrePrimary      InstitutionType = "pre_primary"
	InstitutionPrimary         InstitutionType = "primary"
	InstitutionJuniorSecondary InstitutionType = "junior_secondary"
	InstitutionSecondary       InstitutionType = "secondary"
	InstitutionSeniorSecondary InstitutionType = "senior_secondary"
	InstitutionCollege         InstitutionType = "college"
)

// levelCandidates maps an institution type to substrings searched for in
// level IDs, most specific first.
var levelCandidates = map[InstitutionType][]string{
	InstitutionPrePrimary:      {"pre_primary", "early_years", "kindergarten", "nursery", "foundation", "pyp"},
	InstitutionPrimary:         {"lower_primary", "upper_primary", "primary", "intermediate", "pyp"},
	InstitutionJuniorSecondary: {"junior_secondary", "junior_high", "lower_secondary", "o_level", "senior_phase", "myp"},
	InstitutionSecondary:       {"igcse", "o_level", "secondary", "junior_high", "senior_phase", "myp"},
	InstitutionSeniorSecondary: {"senior_secondary", "senior_high", "a_level", "fet", "dp", "advanced"},
	InstitutionCollege:         {"a_level", "fet", "dp", "advanced", "tertiary"},
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Get returns the curriculum, or nil when no data is loaded for id.
func Get(id ID) *Config {
	cfg, ok := registry[id]
	if !ok {
		return nil
	}
	clone := cfg.clone()
	return &clone
}

// Loaded lists the curricula that have data, in enumeration order.
func Loaded() []ID {
	var out []ID
	for _, id := range IDs() {
		if _, ok := registry[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// ForCountry returns the national curricula of a country, in enumeration order.
func ForCountry(code generic.CountryCode) []ID {
	code = code.Normalize()
	var out []ID
	for _, id := range Loaded() {
		if registry[id].Country == code {
			out = append(out, id)
		}
	}
	return out
}

// SubjectsForLevel returns the subjects of one level, verbatim. With an
// empty levelID it returns every level's subjects flattened in level order,
// keeping the first occurrence of each code. Unknown curricula or levels
// yield nil.
func SubjectsForLevel(id ID, levelID string) []Subject {
	cfg, ok := registry[id]
	if !ok {
		return nil
	}

	if levelID != "" {
		subjects, ok := cfg.Subjects[levelID]
		if !ok {
			return nil
		}
		return append([]Subject(nil), subjects...)
	}

	seen := make(map[string]bool)
	var out []Subject
	for _, level := range cfg.Levels {
		for _, s := range cfg.Subjects[level.ID] {
			if seen[s.Code] {
				continue
			}
			seen[s.Code] = true
			out = append(out, s)
		}
	}
	return out
}

// DefaultLevelForInstitutionType picks the level to preselect for a school
// of the given type. Returns nil only when the curriculum has no data or no
// levels.
func DefaultLevelForInstitutionType(id ID, t InstitutionType) *Level {
	cfg, ok := registry[id]
	if !ok || len(cfg.Levels) == 0 {
		return nil
	}

	for _, candidate := range levelCandidates[t] {
		for _, level := range cfg.Levels {
			if strings.Contains(level.ID, candidate) {
				found := level
				return &found
			}
		}
	}

	first := cfg.Levels[0]
	return &first
}

// =============================================================================
// REGISTRY
// =============================================================================

var registry = map[ID]Config{}

func register(cfg Config) {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	registry[cfg.ID] = cfg
}

// Validate checks level IDs are unique, every subject list belongs to a
// declared level, and subject codes are unique within each level.
func (c Config) Validate() error {
	levels := make(map[string]bool, len(c.Levels))
	for _, l := range c.Levels {
		if levels[l.ID] {
			return fmt.Errorf("curriculum %s: duplicate level %s", c.ID, l.ID)
		}
		levels[l.ID] = true
	}
	for levelID, subjects := range c.Subjects {
		if !levels[levelID] {
			return fmt.Errorf("curriculum %s: subjects for undeclared level %s", c.ID, levelID)
		}
		codes := make(map[string]bool, len(subjects))
		for _, s := range subjects {
			if codes[s.Code] {
				return fmt.Errorf("curriculum %s: duplicate subject %s in level %s", c.ID, s.Code, levelID)
			}
			codes[s.Code] = true
		}
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.Levels = make([]Level, len(c.Levels))
	for i, l := range c.Levels {
		out.Levels[i] = l
		if l.AgeRange != nil {
			ages := *l.AgeRange
			out.Levels[i].AgeRange = &ages
		}
	}
	out.Subjects = make(map[string][]Subject, len(c.Subjects))
	for k, v := range c.Subjects {
		out.Subjects[k] = append([]Subject(nil), v...)
	}
	return out
}
