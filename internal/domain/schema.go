package domain

// Field names used by the annotators and composers.
const (
	FieldPregnancies   = "Pregnancies"
	FieldGlucose       = "Glucose"
	FieldBloodPressure = "BloodPressure"
	FieldSkinThickness = "SkinThickness"
	FieldInsulin       = "Insulin"
	FieldBMI           = "BMI"
	FieldPedigree      = "DiabetesPedigreeFunction"
	FieldAge           = "Age"

	FieldHeartAge       = "age"
	FieldSex            = "sex"
	FieldChestPain      = "cp"
	FieldRestingBP      = "trestbps"
	FieldCholesterol    = "chol"
	FieldFastingSugar   = "fbs"
	FieldRestingECG     = "restecg"
	FieldMaxHeartRate   = "thalach"
	FieldExerciseAngina = "exang"
	FieldOldpeak        = "oldpeak"
	FieldSlope          = "slope"
	FieldVessels        = "ca"
	FieldThal           = "thal"
)

// Encoding tables for the heart disease model. Codes must match training.
var (
	SexCategories = []Category{
		{Label: "Male", Code: 1},
		{Label: "Female", Code: 0},
	}
	ChestPainCategories = []Category{
		{Label: "Typical Angina", Code: 0},
		{Label: "Atypical Angina", Code: 1},
		{Label: "Non-anginal Pain", Code: 2},
		{Label: "Asymptomatic", Code: 3},
	}
	FastingSugarCategories = []Category{
		{Label: "Yes", Code: 1},
		{Label: "No", Code: 0},
	}
	RestingECGCategories = []Category{
		{Label: "Normal", Code: 0},
		{Label: "ST-T Abnormality", Code: 1},
		{Label: "Left Ventricular Hypertrophy", Code: 2},
	}
	ExerciseAnginaCategories = []Category{
		{Label: "Yes", Code: 1},
		{Label: "No", Code: 0},
	}
	SlopeCategories = []Category{
		{Label: "Upsloping", Code: 0},
		{Label: "Flat", Code: 1},
		{Label: "Downsloping", Code: 2},
	}
	ThalCategories = []Category{
		{Label: "Normal", Code: 1},
		{Label: "Fixed Defect", Code: 2},
		{Label: "Reversible Defect", Code: 3},
	}
)

// ParkinsonsFields are the acoustic measurements in training order.
var ParkinsonsFields = []string{
	"MDVP:Fo(Hz)", "MDVP:Fhi(Hz)", "MDVP:Flo(Hz)", "MDVP:Jitter(%)",
	"MDVP:Jitter(Abs)", "MDVP:RAP", "MDVP:PPQ", "Jitter:DDP",
	"MDVP:Shimmer", "MDVP:Shimmer(dB)", "Shimmer:APQ3", "Shimmer:APQ5",
	"MDVP:APQ", "Shimmer:DDA", "NHR", "HNR", "RPDE", "DFA",
	"spread1", "spread2", "D2", "PPE",
}

func bound(v float64) *float64 { return &v }

func numeric(name, label string, lo, hi *float64, integer bool) FieldDef {
	return FieldDef{Name: name, Label: label, Kind: FieldNumeric, Min: lo, Max: hi, Integer: integer}
}

func categorical(name, label string, categories []Category) FieldDef {
	return FieldDef{Name: name, Label: label, Kind: FieldCategorical, Categories: categories}
}

var diabetesSpec = FeatureSpec{
	Domain: DomainDiabetes,
	Fields: []FieldDef{
		numeric(FieldPregnancies, "Pregnancies", bound(0), bound(20), true),
		numeric(FieldGlucose, "Glucose", bound(0), bound(300), true),
		numeric(FieldBloodPressure, "Blood Pressure", bound(0), bound(180), true),
		numeric(FieldSkinThickness, "Skin Thickness", bound(0), bound(100), true),
		numeric(FieldInsulin, "Insulin", bound(0), bound(900), true),
		numeric(FieldBMI, "BMI", bound(0), bound(70), false),
		numeric(FieldPedigree, "Diabetes Pedigree Function", bound(0), bound(3), false),
		numeric(FieldAge, "Age", bound(1), bound(120), true),
	},
}

var heartSpec = FeatureSpec{
	Domain: DomainHeart,
	Fields: []FieldDef{
		numeric(FieldHeartAge, "Age", bound(1), bound(120), true),
		categorical(FieldSex, "Sex", SexCategories),
		categorical(FieldChestPain, "Chest Pain Type", ChestPainCategories),
		withUnit(numeric(FieldRestingBP, "Resting BP", nil, nil, false), "mm Hg"),
		withUnit(numeric(FieldCholesterol, "Cholesterol", nil, nil, false), "mg/dL"),
		categorical(FieldFastingSugar, "Fasting Blood Sugar", FastingSugarCategories),
		categorical(FieldRestingECG, "Resting ECG", RestingECGCategories),
		withUnit(numeric(FieldMaxHeartRate, "Max Heart Rate", nil, nil, false), "bpm"),
		categorical(FieldExerciseAngina, "Exercise Induced Angina", ExerciseAnginaCategories),
		numeric(FieldOldpeak, "ST Depression", nil, nil, false),
		categorical(FieldSlope, "Slope", SlopeCategories),
		numeric(FieldVessels, "Vessels Colored", bound(0), bound(3), true),
		categorical(FieldThal, "Thal", ThalCategories),
	},
}

var parkinsonsSpec = func() FeatureSpec {
	fields := make([]FieldDef, 0, len(ParkinsonsFields))
	for _, name := range ParkinsonsFields {
		fields = append(fields, numeric(name, name, nil, nil, false))
	}
	return FeatureSpec{Domain: DomainParkinsons, Fields: fields}
}()

func withUnit(f FieldDef, unit string) FieldDef {
	f.Unit = unit
	return f
}

// SpecFor returns the feature spec of a domain
func SpecFor(d Domain) (FeatureSpec, bool) {
	switch d {
	case DomainDiabetes:
		return diabetesSpec, true
	case DomainHeart:
		return heartSpec, true
	case DomainParkinsons:
		return parkinsonsSpec, true
	default:
		return FeatureSpec{}, false
	}
}
