package country

import (
	"fmt"
	"time"

	"github.com/edusuite/engine/generic"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Supported country codes
const (
	Kenya       generic.CountryCode = "KE"
	Uganda      generic.CountryCode = "UG"
	Tanzania    generic.CountryCode = "TZ"
	Rwanda      generic.CountryCode = "RW"
	Nigeria     generic.CountryCode = "NG"
	Ghana       generic.CountryCode = "GH"
	SouthAfrica generic.CountryCode = "ZA"
)

// =============================================================================
// REGISTRY
// =============================================================================

var (
	order    []generic.CountryCode
	registry = map[generic.CountryCode]Config{}
)

// register validates a table entry. A malformed table is a programming error
// and stops the process at init.
func register(cfg Config) {
	if _, dup := registry[cfg.Code]; dup {
		panic(fmt.Sprintf("country %s registered twice", cfg.Code))
	}
	if err := cfg.Grading.Validate(); err != nil {
		panic(fmt.Sprintf("country %s: %v", cfg.Code, err))
	}
	if err := cfg.Calendar.Validate(); err != nil {
		panic(fmt.Sprintf("country %s: %v", cfg.Code, err))
	}
	registry[cfg.Code] = cfg
	order = append(order, cfg.Code)
}

// Get returns the configuration for code. Codes are matched
// case-insensitively.
func Get(code generic.CountryCode) (Config, error) {
	cfg, ok := registry[code.Normalize()]
	if !ok {
		return Config{}, &generic.UnknownCountryError{Code: code}
	}
	return cfg.clone(), nil
}

// ParseCode normalizes s and checks it against the registry.
func ParseCode(s string) (generic.CountryCode, error) {
	code := generic.CountryCode(s).Normalize()
	if _, ok := registry[code]; !ok {
		return "", &generic.UnknownCountryError{Code: code}
	}
	return code, nil
}

// IsSupported reports whether code resolves to a Config.
func IsSupported(code generic.CountryCode) bool {
	_, ok := registry[code.Normalize()]
	return ok
}

// Supported lists the registered codes in declaration order.
func Supported() []generic.CountryCode {
	return append([]generic.CountryCode(nil), order...)
}

// All returns every Config in declaration order.
func All() []Config {
	out := make([]Config, 0, len(order))
	for _, code := range order {
		out = append(out, registry[code].clone())
	}
	return out
}

// FormatCurrency renders amount in the country's currency format.
func FormatCurrency(amount decimal.Decimal, code generic.CountryCode) (string, error) {
	cfg, err := Get(code)
	if err != nil {
		return "", err
	}
	return cfg.Currency.Format(amount), nil
}

// GradeFromScore returns the national grade for a percentage score.
// ok is false when the score lies outside [0, 100].
func GradeFromScore(score decimal.Decimal, code generic.CountryCode) (GradeBand, bool, error) {
	cfg, err := Get(code)
	if err != nil {
		return GradeBand{}, false, err
	}
	grade, ok := cfg.Grading.Lookup(score)
	return grade, ok, nil
}

// CurrentTerm returns the term running today according to clock.
// ok is false during holiday months.
func CurrentTerm(code generic.CountryCode, clock generic.Clock) (Term, bool, error) {
	cfg, err := Get(code)
	if err != nil {
		return Term{}, false, err
	}
	current, ok := cfg.Calendar.TermFor(generic.Today(clock))
	return current, ok, nil
}

// CurrentAcademicYear returns the academic year running today according to clock.
func CurrentAcademicYear(code generic.CountryCode, clock generic.Clock) (AcademicYear, error) {
	cfg, err := Get(code)
	if err != nil {
		return AcademicYear{}, err
	}
	return cfg.Calendar.YearFor(generic.Today(clock)), nil
}

// =============================================================================
// COUNTRY TABLES
// =============================================================================

func band(grade string, lo, hi int64, points int, remark string) GradeBand {
	return GradeBand{
		Grade:  grade,
		Min:    decimal.NewFromInt(lo),
		Max:    decimal.NewFromInt(hi),
		Points: &points,
		Remark: remark,
	}
}

func term(name string, start, end time.Month) Term {
	return Term{Name: name, Months: generic.MonthRange{Start: start, End: end}}
}

// waecScale is shared by the WAEC member states.
func waecScale(id string) GradingScale {
	return GradingScale{
		ID:   id,
		Name: "WAEC nine-point scale",
		Bands: []GradeBand{
			band("A1", 75, 100, 1, "Excellent"),
			band("B2", 70, 74, 2, "Very Good"),
			band("B3", 65, 69, 3, "Good"),
			band("C4", 60, 64, 4, "Credit"),
			band("C5", 55, 59, 5, "Credit"),
			band("C6", 50, 54, 6, "Credit"),
			band("D7", 45, 49, 7, "Pass"),
			band("E8", 40, 44, 8, "Pass"),
			band("F9", 0, 39, 9, "Fail"),
		},
	}
}

func init() {
	register(Config{
		Code: Kenya,
		Name: "Kenya",
		Currency: CurrencyFormat{
			Unit: currency.MustParseISO("KES"), Symbol: "KSh", Decimals: 2,
			ThousandsSeparator: ",", DecimalSeparator: ".",
		},
		Grading: GradingScale{
			ID:   "ke_kcse",
			Name: "KCSE twelve-point scale",
			Bands: []GradeBand{
				band("A", 80, 100, 12, "Excellent"),
				band("A-", 75, 79, 11, "Very Good"),
				band("B+", 70, 74, 10, "Good"),
				band("B", 65, 69, 9, "Good"),
				band("B-", 60, 64, 8, "Above Average"),
				band("C+", 55, 59, 7, "Average"),
				band("C", 50, 54, 6, "Average"),
				band("C-", 45, 49, 5, "Below Average"),
				band("D+", 40, 44, 4, "Weak"),
				band("D", 35, 39, 3, "Weak"),
				band("D-", 30, 34, 2, "Poor"),
				band("E", 0, 29, 1, "Very Poor"),
			},
		},
		Calendar: AcademicCalendar{
			StartMonth: time.January, EndMonth: time.November,
			Terms: []Term{
				term("Term 1", time.January, time.March),
				term("Term 2", time.May, time.July),
				term("Term 3", time.September, time.November),
			},
		},
	})

	register(Config{
		Code: Uganda,
		Name: "Uganda",
		Currency: CurrencyFormat{
			Unit: currency.MustParseISO("UGX"), Symbol: "USh", Decimals: 0,
			ThousandsSeparator: ",", DecimalSeparator: ".",
		},
		Grading: GradingScale{
			ID:   "ug_uneb",
			Name: "UNEB nine-point scale",
			Bands: []GradeBand{
				band("D1", 80, 100, 1, "Distinction"),
				band("D2", 70, 79, 2, "Distinction"),
				band("C3", 65, 69, 3, "Credit"),
				band("C4", 60, 64, 4, "Credit"),
				band("C5", 55, 59, 5, "Credit"),
				band("C6", 50, 54, 6, "Credit"),
				band("P7", 45, 49, 7, "Pass"),
				band("P8", 40, 44, 8, "Pass"),
				band("F9", 0, 39, 9, "Fail"),
			},
		},
		Calendar: AcademicCalendar{
			StartMonth: time.February, EndMonth: time.December,
			Terms: []Term{
				term("Term 1", time.February, time.April),
				term("Term 2", time.May, time.August),
				term("Term 3", time.September, time.December),
			},
		},
	})

	register(Config{
		Code: Tanzania,
		Name: "Tanzania",
		Currency: CurrencyFormat{
			Unit: currency.MustParseISO("TZS"), Symbol: "TSh", Decimals: 0,
			ThousandsSeparator: ",", DecimalSeparator: ".",
		},
		Grading: GradingScale{
			ID:   "tz_necta",
			Name: "NECTA CSEE scale",
			Bands: []GradeBand{
				band("A", 75, 100, 1, "Excellent"),
				band("B", 65, 74, 2, "Very Good"),
				band("C", 45, 64, 3, "Good"),
				band("D", 30, 44, 4, "Satisfactory"),
				band("F", 0, 29, 5, "Fail"),
			},
		},
		Calendar: AcademicCalendar{
			StartMonth: time.January, EndMonth: time.December,
			Terms: []Term{
				term("Term 1", time.January, time.June),
				term("Term 2", time.July, time.December),
			},
		},
	})

	register(Config{
		Code: Rwanda,
		Name: "Rwanda",
		Currency: CurrencyFormat{
			Unit: currency.MustParseISO("RWF"), Symbol: "FRw", Decimals: 0,
			ThousandsSeparator: ",", DecimalSeparator: ".",
		},
		Grading: GradingScale{
			ID:   "rw_reb",
			Name: "REB secondary scale",
			Bands: []GradeBand{
				band("A", 80, 100, 6, "Excellent"),
				band("B", 75, 79, 5, "Very Good"),
				band("C", 70, 74, 4, "Good"),
				band("D", 65, 69, 3, "Satisfactory"),
				band("E", 60, 64, 2, "Adequate"),
				band("S", 50, 59, 1, "Subsidiary"),
				band("F", 0, 49, 0, "Fail"),
			},
		},
		Calendar: AcademicCalendar{
			StartMonth: time.September, EndMonth: time.July,
			Terms: []Term{
				term("Term 1", time.September, time.December),
				term("Term 2", time.January, time.March),
				term("Term 3", time.April, time.July),
			},
		},
	})

	register(Config{
		Code: Nigeria,
		Name: "Nigeria",
		Currency: CurrencyFormat{
			Unit: currency.MustParseISO("NGN"), Symbol: "₦", Decimals: 2,
			ThousandsSeparator: ",", DecimalSeparator: ".",
		},
		Grading: waecScale("ng_waec"),
		Calendar: AcademicCalendar{
			StartMonth: time.September, EndMonth: time.July,
			Terms: []Term{
				term("First Term", time.September, time.December),
				term("Second Term", time.January, time.April),
				term("Third Term", time.May, time.July),
			},
		},
	})

	register(Config{
		Code: Ghana,
		Name: "Ghana",
		Currency: CurrencyFormat{
			Unit: currency.MustParseISO("GHS"), Symbol: "GH₵", Decimals: 2,
			ThousandsSeparator: ",", DecimalSeparator: ".",
		},
		Grading: waecScale("gh_waec"),
		Calendar: AcademicCalendar{
			StartMonth: time.September, EndMonth: time.July,
			Terms: []Term{
				term("Term 1", time.September, time.December),
				term("Term 2", time.January, time.April),
				term("Term 3", time.May, time.July),
			},
		},
	})

	register(Config{
		Code: SouthAfrica,
		Name: "South Africa",
		Currency: CurrencyFormat{
			Unit: currency.MustParseISO("ZAR"), Symbol: "R", Decimals: 2,
			ThousandsSeparator: " ", DecimalSeparator: ",",
		},
		Grading: GradingScale{
			ID:   "za_nsc",
			Name: "NSC seven-point scale",
			Bands: []GradeBand{
				band("7", 80, 100, 7, "Outstanding achievement"),
				band("6", 70, 79, 6, "Meritorious achievement"),
				band("5", 60, 69, 5, "Substantial achievement"),
				band("4", 50, 59, 4, "Adequate achievement"),
				band("3", 40, 49, 3, "Moderate achievement"),
				band("2", 30, 39, 2, "Elementary achievement"),
				band("1", 0, 29, 1, "Not achieved"),
			},
		},
		Calendar: AcademicCalendar{
			StartMonth: time.January, EndMonth: time.December,
			Terms: []Term{
				term("Term 1", time.January, time.March),
				term("Term 2", time.April, time.June),
				term("Term 3", time.July, time.September),
				term("Term 4", time.October, time.December),
			},
		},
	})
}
