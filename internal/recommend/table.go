package recommend

type cell struct {
	group  AgeGroup
	reason ReasonKey
}

type advice struct {
	treatment string
	notes     string
}

// table holds one entry for every AgeGroup x ReasonKey pair.
var table = map[cell]advice{
	{Child, Checkup}: {
		"Oral exam, fluoride application, check if sealants are needed.",
		"Focus on prevention and monitoring tooth/jaw development.",
	},
	{Child, Cleaning}: {
		"Prophylaxis (cleaning) with fluoride treatment.",
		"Teach proper brushing and flossing in a child-friendly way.",
	},
	{Child, Toothache}: {
		"Exam, X-ray, filling or pulp therapy for affected baby/permanent tooth.",
		"Use child behavior management techniques; involve parents.",
	},
	{Child, Braces}: {
		"Orthodontic assessment (crowding, bite, jaw growth).",
		"May schedule full ortho workup if needed.",
	},
	{Child, Other}: {
		"Basic exam, then refer to pediatric dentist if case is complex.",
		"Clarify complaint; focus on comfort and reassurance.",
	},

	{Adult, Checkup}: {
		"Comprehensive exam, X-ray as needed, treatment plan discussion.",
		"Review dental history, lifestyle, and habits.",
	},
	{Adult, Cleaning}: {
		"Scaling and polishing; oral hygiene instructions.",
		"Check for early gum disease and stains.",
	},
	{Adult, Toothache}: {
		"Exam, X-ray, possible filling, root canal, or extraction.",
		"Explain options, cost, and follow-up visits.",
	},
	{Adult, Braces}: {
		"Orthodontic consultation (malocclusion, spacing, crowding).",
		"Discuss braces vs clear aligners if available.",
	},
	{Adult, Other}: {
		"Initial exam and diagnosis; refer to specialist if needed.",
		"May involve endodontist, periodontist, or oral surgeon.",
	},

	{Senior, Checkup}: {
		"Exam of teeth, gums, dentures/implants; X-ray if needed.",
		"Consider medical history and medications (e.g., diabetes, hypertension).",
	},
	{Senior, Cleaning}: {
		"Gentle scaling (may be deep cleaning) and polishing.",
		"Gums and bone may be fragile; check for periodontal disease.",
	},
	{Senior, Toothache}: {
		"Exam, X-ray, check old fillings/crowns, treat root or gum problems.",
		"Consider pain control, systemic health, and ability to heal.",
	},
	{Senior, Braces}: {
		"Consultation for bite/teeth alignment and prosthetic planning.",
		"More common to adjust dentures/implants than full ortho treatment.",
	},
	{Senior, Other}: {
		"Exam plus review of existing dentures/implants and oral hygiene.",
		"Focus on comfort, function, and quality of life.",
	},
}
