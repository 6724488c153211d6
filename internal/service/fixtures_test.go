package service

import (
	"github.com/disease-predictor/internal/domain"
)

func diabetesNegativeInput() domain.PatientInput {
	return domain.PatientInput{
		domain.FieldPregnancies:   domain.Num(1),
		domain.FieldGlucose:       domain.Num(85),
		domain.FieldBloodPressure: domain.Num(66),
		domain.FieldSkinThickness: domain.Num(29),
		domain.FieldInsulin:       domain.Num(0),
		domain.FieldBMI:           domain.Num(26.6),
		domain.FieldPedigree:      domain.Num(0.351),
		domain.FieldAge:           domain.Num(31),
	}
}

func diabetesRiskyInput() domain.PatientInput {
	input := diabetesNegativeInput()
	input[domain.FieldGlucose] = domain.Num(160)
	input[domain.FieldBMI] = domain.Num(33)
	input[domain.FieldAge] = domain.Num(50)
	input[domain.FieldPedigree] = domain.Num(0.7)
	return input
}

func heartInput() domain.PatientInput {
	return domain.PatientInput{
		domain.FieldHeartAge:       domain.Num(63),
		domain.FieldSex:            domain.Cat("Male"),
		domain.FieldChestPain:      domain.Cat("Asymptomatic"),
		domain.FieldRestingBP:      domain.Num(145),
		domain.FieldCholesterol:    domain.Num(233),
		domain.FieldFastingSugar:   domain.Cat("Yes"),
		domain.FieldRestingECG:     domain.Cat("Normal"),
		domain.FieldMaxHeartRate:   domain.Num(150),
		domain.FieldExerciseAngina: domain.Cat("No"),
		domain.FieldOldpeak:        domain.Num(2.3),
		domain.FieldSlope:          domain.Cat("Upsloping"),
		domain.FieldVessels:        domain.Num(0),
		domain.FieldThal:           domain.Cat("Reversible Defect"),
	}
}

func parkinsonsInput() domain.PatientInput {
	input := make(domain.PatientInput, len(domain.ParkinsonsFields))
	for i, name := range domain.ParkinsonsFields {
		input[name] = domain.Num(float64(i) + 0.5)
	}
	return input
}
