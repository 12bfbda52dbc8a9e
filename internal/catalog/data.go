package catalog

import (
	"github.com/brainsait/drg-suite/internal/domain"
)

// Builtin returns a catalog backed by the built-in dataset. It is used when
// no external catalog file or database source is configured.
func Builtin() *Catalog {
	c, err := New(builtinTerms(), builtinProcedures(), builtinExclusions())
	if err != nil {
		// The builtin tables are compile-time data; a construction failure
		// is a programming error, not a runtime condition.
		panic(err)
	}
	return c
}

// builtinTerms is the default diagnosis knowledge base. Synonym lists carry
// English and Arabic variants of the same clinical concept for the Saudi
// healthcare context.
func builtinTerms() []domain.TermEntry {
	return []domain.TermEntry{
		{
			Term:     "myocardial infarction",
			Synonyms: []string{"myocardial infarction", "mi", "heart attack", "احتشاء عضلة القلب"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "I21.9", Description: "Acute myocardial infarction, unspecified", BaseConfidence: 0.99,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-190", Description: "Acute myocardial infarction", BaseCMI: 1.92, SOIRange: [2]int{2, 4},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-131", Description: "Cardiac diagnoses, major", BaseCMI: 1.10,
			},
		},
		{
			Term:     "old myocardial infarction",
			Synonyms: []string{"old myocardial infarction", "prior mi", "احتشاء قديم"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "I25.2", Description: "Old myocardial infarction", BaseConfidence: 0.84,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-192", Description: "Chronic ischemic heart disease", BaseCMI: 0.88, SOIRange: [2]int{1, 3},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-132", Description: "Cardiac diagnoses, minor", BaseCMI: 0.66,
			},
		},
		{
			Term:     "heart failure",
			Synonyms: []string{"heart failure", "congestive heart failure", "chf", "فشل القلب"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "I50.9", Description: "Heart failure, unspecified", BaseConfidence: 0.92,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-194", Description: "Heart failure", BaseCMI: 1.28, SOIRange: [2]int{1, 4},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-129", Description: "Heart failure management", BaseCMI: 0.98,
			},
		},
		{
			Term:     "stroke",
			Synonyms: []string{"stroke", "cerebral infarction", "cva", "جلطة"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "I63.9", Description: "Cerebral infarction, unspecified", BaseConfidence: 0.96,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-045", Description: "CVA with infarction", BaseCMI: 1.52, SOIRange: [2]int{2, 4},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-122", Description: "Neurologic diagnoses, major", BaseCMI: 1.05,
			},
		},
		{
			Term:     "hypertension",
			Synonyms: []string{"hypertension", "high blood pressure", "ضغط دم"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "I10", Description: "Essential (primary) hypertension", BaseConfidence: 0.88,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-198", Description: "Hypertension", BaseCMI: 0.72, SOIRange: [2]int{1, 2},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-061", Description: "Hypertension management", BaseCMI: 0.55,
			},
		},
		{
			Term:     "pneumonia",
			Synonyms: []string{"pneumonia", "التهاب رئوي"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "J18.9", Description: "Pneumonia, unspecified organism", BaseConfidence: 0.85,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-139", Description: "Other pneumonia", BaseCMI: 1.02, SOIRange: [2]int{1, 4},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-076", Description: "Respiratory infection", BaseCMI: 0.84,
			},
		},
		{
			Term:     "copd",
			Synonyms: []string{"copd", "chronic obstructive pulmonary disease", "الانسداد الرئوي المزمن"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "J44.9", Description: "Chronic obstructive pulmonary disease, unspecified", BaseConfidence: 0.91,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-140", Description: "COPD", BaseCMI: 1.12, SOIRange: [2]int{1, 4},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-077", Description: "COPD management", BaseCMI: 0.83,
			},
		},
		{
			Term:     "asthma",
			Synonyms: []string{"asthma", "الربو"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "J45.909", Description: "Unspecified asthma, uncomplicated", BaseConfidence: 0.87,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-141", Description: "Asthma", BaseCMI: 0.78, SOIRange: [2]int{1, 3},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-078", Description: "Asthma management", BaseCMI: 0.62,
			},
		},
		{
			Term:     "sepsis",
			Synonyms: []string{"sepsis", "septicemia", "تعفن الدم"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "A41.9", Description: "Sepsis, unspecified organism", BaseConfidence: 0.96,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-720", Description: "Septicemia and disseminated infections", BaseCMI: 1.85, SOIRange: [2]int{2, 4},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-143", Description: "Severe infection", BaseCMI: 1.22,
			},
		},
		{
			Term:     "covid-19",
			Synonyms: []string{"covid-19", "covid", "كوفيد"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "U07.1", Description: "COVID-19", BaseConfidence: 0.97,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-137", Description: "Major respiratory infections", BaseCMI: 1.18, SOIRange: [2]int{1, 4},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-075", Description: "Viral illness", BaseCMI: 0.88,
			},
		},
		{
			Term:     "appendicitis",
			Synonyms: []string{"appendicitis", "التهاب الزائدة الدودية"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "K37", Description: "Unspecified appendicitis", BaseConfidence: 0.95,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-225", Description: "Appendectomy", BaseCMI: 0.98, SOIRange: [2]int{1, 3},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-084", Description: "Abdominal pain and inflammation", BaseCMI: 0.79,
			},
		},
		{
			Term:     "diabetes",
			Synonyms: []string{"diabetes", "diabetes mellitus", "type 2 diabetes", "سكري"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "E11.9", Description: "Type 2 diabetes mellitus without complications", BaseConfidence: 0.86,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-420", Description: "Diabetes", BaseCMI: 0.81, SOIRange: [2]int{1, 3},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-066", Description: "Diabetes management", BaseCMI: 0.60,
			},
		},
		{
			Term:     "acute kidney injury",
			Synonyms: []string{"acute kidney injury", "aki", "فشل كلوي حاد"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "N17.9", Description: "Acute kidney failure, unspecified", BaseConfidence: 0.93,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-460", Description: "Renal failure", BaseCMI: 1.34, SOIRange: [2]int{2, 4},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-107", Description: "Renal diagnoses, major", BaseCMI: 0.92,
			},
		},
		{
			Term:     "end stage renal disease",
			Synonyms: []string{"end stage renal disease", "esrd", "الفشل الكلوي النهائي"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "N18.6", Description: "End stage renal disease", BaseConfidence: 0.94,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-466", Description: "Chronic kidney disease", BaseCMI: 1.41, SOIRange: [2]int{2, 4},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-109", Description: "Dialysis-dependent renal disease", BaseCMI: 0.95,
			},
		},
		{
			Term:     "urinary tract infection",
			Synonyms: []string{"urinary tract infection", "uti", "التهاب المسالك البولية"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "N39.0", Description: "Urinary tract infection, site not specified", BaseConfidence: 0.82,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-463", Description: "Kidney and urinary tract infections", BaseCMI: 0.89, SOIRange: [2]int{1, 3},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-106", Description: "Urinary infection", BaseCMI: 0.64,
			},
		},
		{
			Term:     "fracture",
			Synonyms: []string{"fracture", "broken bone", "كسر"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "S82.90XA", Description: "Unspecified fracture of unspecified lower leg, initial encounter", BaseConfidence: 0.75,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-308", Description: "Lower extremity fracture", BaseCMI: 1.05, SOIRange: [2]int{1, 3},
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-251", Description: "Fracture care", BaseCMI: 0.70,
			},
		},
	}
}

// builtinProcedures is the default procedure term list.
func builtinProcedures() []domain.ProcedureEntry {
	return []domain.ProcedureEntry{
		{Term: "appendectomy", Synonyms: []string{"appendectomy", "استئصال الزائدة"}, Code: "44970", Description: "Laparoscopic appendectomy", BaseConfidence: 0.92},
		{Term: "cholecystectomy", Synonyms: []string{"cholecystectomy", "استئصال المرارة"}, Code: "47562", Description: "Laparoscopic cholecystectomy", BaseConfidence: 0.93},
		{Term: "coronary angioplasty", Synonyms: []string{"coronary angioplasty", "pci", "قسطرة القلب"}, Code: "92920", Description: "Percutaneous coronary intervention", BaseConfidence: 0.95},
		{Term: "coronary artery bypass", Synonyms: []string{"coronary artery bypass", "cabg"}, Code: "33533", Description: "Coronary artery bypass, single arterial graft", BaseConfidence: 0.97},
		{Term: "intubation", Synonyms: []string{"intubation", "endotracheal intubation"}, Code: "31500", Description: "Endotracheal intubation", BaseConfidence: 0.94},
		{Term: "mechanical ventilation", Synonyms: []string{"mechanical ventilation", "تنفس صناعي"}, Code: "94002", Description: "Ventilation assist and management", BaseConfidence: 0.95},
		{Term: "dialysis", Synonyms: []string{"dialysis", "hemodialysis", "غسيل الكلى"}, Code: "90935", Description: "Hemodialysis procedure", BaseConfidence: 0.96},
	}
}

// builtinExclusions maps a diagnosis code to codes it renders invalid when
// both appear in the same run: the acute condition suppresses its chronic or
// historical counterpart.
func builtinExclusions() map[string][]string {
	return map[string][]string{
		"I21.9": {"I25.2"}, // acute MI suppresses old MI
		"N17.9": {"N18.6"}, // acute kidney injury suppresses ESRD
	}
}
