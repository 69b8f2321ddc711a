package curriculum

// =============================================================================
// TABLE HELPERS
// =============================================================================

func ages(lo, hi int) *AgeRange { return &AgeRange{Min: lo, Max: hi} }

func core(code, name string) Subject     { return Subject{Code: code, Name: name, Compulsory: true} }
func elective(code, name string) Subject { return Subject{Code: code, Name: name} }

// =============================================================================
// CURRICULUM TABLES
// =============================================================================
// Curricula in the ID enumeration without an entry below (tz_necta, rw_cbc,
// ng_nerdc, ib_pyp, ib_myp) are not loaded yet; Get returns nil for them.

func init() {
	register(Config{
		ID:      KenyaCBC,
		Name:    "Competency Based Curriculum",
		Country: "KE",
		Levels: []Level{
			{ID: "pre_primary", Name: "Pre-Primary (PP1-PP2)", AgeRange: ages(4, 5), GradingScaleID: "ke_cbc_rubric"},
			{ID: "lower_primary", Name: "Lower Primary (Grade 1-3)", AgeRange: ages(6, 8), GradingScaleID: "ke_cbc_rubric"},
			{ID: "upper_primary", Name: "Upper Primary (Grade 4-6)", AgeRange: ages(9, 11), GradingScaleID: "ke_cbc_rubric"},
			{ID: "junior_secondary", Name: "Junior Secondary (Grade 7-9)", AgeRange: ages(12, 14), GradingScaleID: "ke_cbc_rubric"},
			{ID: "senior_secondary", Name: "Senior Secondary (Grade 10-12)", AgeRange: ages(15, 17), GradingScaleID: "ke_kcse"},
		},
		Subjects: map[string][]Subject{
			"pre_primary": {
				core("LNG", "Language Activities"),
				core("MAT", "Mathematical Activities"),
				core("ENV", "Environmental Activities"),
				core("CRE", "Creative Activities"),
				core("REL", "Religious Education Activities"),
			},
			"lower_primary": {
				core("ENG", "English Activities"),
				core("KIS", "Kiswahili Activities"),
				core("MAT", "Mathematical Activities"),
				core("ENV", "Environmental Activities"),
				core("CRE", "Creative Activities"),
				core("REL", "Religious Education Activities"),
			},
			"upper_primary": {
				core("ENG", "English"),
				core("KIS", "Kiswahili"),
				core("MAT", "Mathematics"),
				core("SCT", "Science and Technology"),
				core("AGN", "Agriculture and Nutrition"),
				core("SST", "Social Studies"),
				core("CAS", "Creative Arts"),
				core("REL", "Religious Education"),
			},
			"junior_secondary": {
				core("ENG", "English"),
				core("KIS", "Kiswahili"),
				core("MAT", "Mathematics"),
				core("ISC", "Integrated Science"),
				core("PTE", "Pre-Technical Studies"),
				core("SST", "Social Studies"),
				core("AGN", "Agriculture and Nutrition"),
				core("CAS", "Creative Arts and Sports"),
				core("REL", "Religious Education"),
			},
			"senior_secondary": {
				core("ENG", "English"),
				core("KIS", "Kiswahili"),
				core("CSL", "Community Service Learning"),
				core("PHE", "Physical Education"),
				elective("MAT", "Core Mathematics"),
				elective("BIO", "Biology"),
				elective("CHE", "Chemistry"),
				elective("PHY", "Physics"),
				elective("GEO", "Geography"),
				elective("HIS", "History and Citizenship"),
				elective("BST", "Business Studies"),
				elective("CSC", "Computer Science"),
			},
		},
	})

	register(Config{
		ID:      Kenya844,
		Name:    "8-4-4 System",
		Country: "KE",
		Levels: []Level{
			{ID: "primary", Name: "Primary (Standard 1-8)", AgeRange: ages(6, 13), GradingScaleID: "ke_kcpe"},
			{ID: "secondary", Name: "Secondary (Form 1-4)", AgeRange: ages(14, 17), GradingScaleID: "ke_kcse"},
		},
		Subjects: map[string][]Subject{
			"primary": {
				core("ENG", "English"),
				core("KIS", "Kiswahili"),
				core("MAT", "Mathematics"),
				core("SCI", "Science"),
				core("SSR", "Social Studies and Religious Education"),
			},
			"secondary": {
				core("ENG", "English"),
				core("KIS", "Kiswahili"),
				core("MAT", "Mathematics"),
				elective("BIO", "Biology"),
				elective("CHE", "Chemistry"),
				elective("PHY", "Physics"),
				elective("GEO", "Geography"),
				elective("HIS", "History and Government"),
				elective("CRE", "Christian Religious Education"),
				elective("BST", "Business Studies"),
				elective("AGR", "Agriculture"),
			},
		},
	})

	register(Config{
		ID:      UgandaNLSC,
		Name:    "National Lower Secondary Curriculum",
		Country: "UG",
		Levels: []Level{
			{ID: "nursery", Name: "Nursery (Baby-Top Class)", AgeRange: ages(3, 5)},
			{ID: "primary", Name: "Primary (P1-P7)", AgeRange: ages(6, 12), GradingScaleID: "ug_ple"},
			{ID: "o_level", Name: "Ordinary Level (S1-S4)", AgeRange: ages(13, 16), GradingScaleID: "ug_uneb"},
			{ID: "a_level", Name: "Advanced Level (S5-S6)", AgeRange: ages(17, 18), GradingScaleID: "ug_uace"},
		},
		Subjects: map[string][]Subject{
			"primary": {
				core("ENG", "English"),
				core("MTC", "Mathematics"),
				core("SCI", "Integrated Science"),
				core("SST", "Social Studies"),
			},
			"o_level": {
				core("ENG", "English Language"),
				core("MTC", "Mathematics"),
				core("BIO", "Biology"),
				core("CHE", "Chemistry"),
				core("PHY", "Physics"),
				core("HIS", "History and Political Education"),
				core("GEO", "Geography"),
				elective("ICT", "Information and Communication Technology"),
				elective("ENT", "Entrepreneurship"),
				elective("KIS", "Kiswahili"),
			},
			"a_level": {
				core("GP", "General Paper"),
				elective("SMA", "Subsidiary Mathematics"),
				elective("SICT", "Subsidiary ICT"),
				elective("MTC", "Mathematics"),
				elective("PHY", "Physics"),
				elective("CHE", "Chemistry"),
				elective("BIO", "Biology"),
				elective("ECO", "Economics"),
			},
		},
	})

	register(Config{
		ID:      GhanaNaCCA,
		Name:    "Standards-Based Curriculum (NaCCA)",
		Country: "GH",
		Levels: []Level{
			{ID: "kindergarten", Name: "Kindergarten (KG1-KG2)", AgeRange: ages(4, 5)},
			{ID: "lower_primary", Name: "Lower Primary (B1-B3)", AgeRange: ages(6, 8)},
			{ID: "upper_primary", Name: "Upper Primary (B4-B6)", AgeRange: ages(9, 11)},
			{ID: "junior_high", Name: "Junior High School (B7-B9)", AgeRange: ages(12, 14), GradingScaleID: "gh_bece"},
			{ID: "senior_high", Name: "Senior High School (SHS1-SHS3)", AgeRange: ages(15, 17), GradingScaleID: "gh_waec"},
		},
		Subjects: map[string][]Subject{
			"lower_primary": {
				core("ENG", "English Language"),
				core("GHL", "Ghanaian Language"),
				core("MTH", "Mathematics"),
				core("SCI", "Science"),
				core("OWP", "Our World Our People"),
				core("CAD", "Creative Arts"),
			},
			"upper_primary": {
				core("ENG", "English Language"),
				core("GHL", "Ghanaian Language"),
				core("MTH", "Mathematics"),
				core("SCI", "Science"),
				core("OWP", "Our World Our People"),
				core("HIS", "History"),
				core("CAD", "Creative Arts"),
				core("CMP", "Computing"),
			},
			"junior_high": {
				core("ENG", "English Language"),
				core("MTH", "Mathematics"),
				core("SCI", "Integrated Science"),
				core("SST", "Social Studies"),
				core("CTC", "Career Technology"),
				core("CAD", "Creative Arts and Design"),
				core("CMP", "Computing"),
				elective("FRE", "French"),
			},
			"senior_high": {
				core("ENG", "English Language"),
				core("CMT", "Core Mathematics"),
				core("ISC", "Integrated Science"),
				core("SST", "Social Studies"),
				elective("EMT", "Elective Mathematics"),
				elective("PHY", "Physics"),
				elective("CHE", "Chemistry"),
				elective("BIO", "Biology"),
				elective("ECO", "Economics"),
			},
		},
	})

	register(Config{
		ID:      SouthAfricaCAPS,
		Name:    "Curriculum and Assessment Policy Statement",
		Country: "ZA",
		Levels: []Level{
			{ID: "foundation_phase", Name: "Foundation Phase (Grade R-3)", AgeRange: ages(5, 9)},
			{ID: "intermediate_phase", Name: "Intermediate Phase (Grade 4-6)", AgeRange: ages(10, 12)},
			{ID: "senior_phase", Name: "Senior Phase (Grade 7-9)", AgeRange: ages(13, 15)},
			{ID: "fet_phase", Name: "FET Phase (Grade 10-12)", AgeRange: ages(16, 18), GradingScaleID: "za_nsc"},
		},
		Subjects: map[string][]Subject{
			"foundation_phase": {
				core("HL", "Home Language"),
				core("FAL", "First Additional Language"),
				core("MAT", "Mathematics"),
				core("LS", "Life Skills"),
			},
			"intermediate_phase": {
				core("HL", "Home Language"),
				core("FAL", "First Additional Language"),
				core("MAT", "Mathematics"),
				core("NST", "Natural Sciences and Technology"),
				core("SS", "Social Sciences"),
				core("LS", "Life Skills"),
			},
			"senior_phase": {
				core("HL", "Home Language"),
				core("FAL", "First Additional Language"),
				core("MAT", "Mathematics"),
				core("NS", "Natural Sciences"),
				core("SS", "Social Sciences"),
				core("TECH", "Technology"),
				core("EMS", "Economic and Management Sciences"),
				core("LO", "Life Orientation"),
				core("CA", "Creative Arts"),
			},
			"fet_phase": {
				core("HL", "Home Language"),
				core("FAL", "First Additional Language"),
				core("LO", "Life Orientation"),
				elective("MAT", "Mathematics"),
				elective("MLIT", "Mathematical Literacy"),
				elective("PSC", "Physical Sciences"),
				elective("LSC", "Life Sciences"),
				elective("ACC", "Accounting"),
				elective("GEO", "Geography"),
				elective("HIS", "History"),
			},
		},
	})

	register(Config{
		ID:   IGCSE,
		Name: "Cambridge International",
		Levels: []Level{
			{ID: "lower_secondary", Name: "Cambridge Lower Secondary (Stage 7-9)", AgeRange: ages(11, 14), GradingScaleID: "cambridge_checkpoint"},
			{ID: "igcse", Name: "Cambridge IGCSE (Year 10-11)", AgeRange: ages(14, 16), GradingScaleID: "igcse_9_1"},
			{ID: "as_level", Name: "Cambridge AS Level (Year 12)", AgeRange: ages(16, 17), GradingScaleID: "cambridge_as"},
			{ID: "a_level", Name: "Cambridge A Level (Year 13)", AgeRange: ages(17, 18), GradingScaleID: "cambridge_a"},
		},
		Subjects: map[string][]Subject{
			"lower_secondary": {
				core("0844", "English"),
				core("0862", "Mathematics"),
				core("0893", "Science"),
			},
			"igcse": {
				core("0500", "First Language English"),
				core("0580", "Mathematics"),
				elective("0610", "Biology"),
				elective("0620", "Chemistry"),
				elective("0625", "Physics"),
				elective("0455", "Economics"),
				elective("0478", "Computer Science"),
				elective("0460", "Geography"),
			},
			"as_level": {
				elective("9709", "Mathematics"),
				elective("9700", "Biology"),
				elective("9701", "Chemistry"),
				elective("9702", "Physics"),
				elective("9708", "Economics"),
			},
			"a_level": {
				elective("9709", "Mathematics"),
				elective("9231", "Further Mathematics"),
				elective("9700", "Biology"),
				elective("9701", "Chemistry"),
				elective("9702", "Physics"),
				elective("9708", "Economics"),
			},
		},
	})

	register(Config{
		ID:   IBDP,
		Name: "IB Diploma Programme",
		Levels: []Level{
			{ID: "dp1", Name: "Diploma Year 1", AgeRange: ages(16, 17), GradingScaleID: "ib_7"},
			{ID: "dp2", Name: "Diploma Year 2", AgeRange: ages(17, 18), GradingScaleID: "ib_7"},
		},
		Subjects: map[string][]Subject{
			"dp1": {
				core("TOK", "Theory of Knowledge"),
				core("CAS", "Creativity, Activity, Service"),
				elective("LAL", "Language A: Literature"),
				elective("LB", "Language B"),
				elective("AA", "Mathematics: Analysis and Approaches"),
				elective("AI", "Mathematics: Applications and Interpretation"),
				elective("BIO", "Biology"),
				elective("ECO", "Economics"),
			},
			"dp2": {
				core("TOK", "Theory of Knowledge"),
				core("CAS", "Creativity, Activity, Service"),
				core("EE", "Extended Essay"),
				elective("LAL", "Language A: Literature"),
				elective("LB", "Language B"),
				elective("AA", "Mathematics: Analysis and Approaches"),
				elective("AI", "Mathematics: Applications and Interpretation"),
				elective("BIO", "Biology"),
				elective("ECO", "Economics"),
			},
		},
	})
}
