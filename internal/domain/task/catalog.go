package task

import (
	"strings"
	"time"
)

// TemplateTask is one fixed entry of a department's daily shift plan. The
// plans are static: workers tick templates off per day, they do not edit
// them.
type TemplateTask struct {
	ID                int
	Time              string // "06:30" or "12:00-12:30"
	Title             string
	Description       string
	Location          string
	Priority          Priority
	Condition         string
	EstimatedDuration string
}

// Scored reports whether completing the template earns points.
func (t TemplateTask) Scored() bool {
	return t.Priority != PriorityBreak
}

// IsActiveAt reports whether the template's slot is within ±30 minutes of
// the given wall-clock time. Ranged slots ("12:00-12:30") use their start.
func (t TemplateTask) IsActiveAt(now time.Time) bool {
	slot, _, _ := strings.Cut(t.Time, "-")
	parsed, err := time.Parse("15:04", slot)
	if err != nil {
		return false
	}

	slotMinutes := parsed.Hour()*60 + parsed.Minute()
	nowMinutes := now.Hour()*60 + now.Minute()
	diff := nowMinutes - slotMinutes
	if diff < 0 {
		diff = -diff
	}

	return diff <= 30
}

// Departments maps DECT extension codes to department names.
func Departments() map[string]string {
	return map[string]string{
		"27527": "Kleiner Botendienst",
		"27522": "Wäsche & Küchen Service",
		"27525": "Bauteil C Service",
		"27529": "Bauteil H & Kindergarten",
		"27530": "Hauptmagazin Service",
	}
}

// TemplatesFor returns the daily shift plan for a DECT code. Codes without
// a maintained plan return an empty slice.
func TemplatesFor(dect string) []TemplateTask {
	templates, ok := shiftPlans[dect]
	if !ok {
		return nil
	}

	out := make([]TemplateTask, len(templates))
	copy(out, templates)
	return out
}

var shiftPlans = map[string][]TemplateTask{
	"27527": {
		{
			ID:                1,
			Time:              "06:30",
			Title:             `Mopp "BT C"`,
			Description:       "Nach Mopp-Verteilung, Blut von K101, Präparate und Konservenboxen (leere Kühlboxen) von K101 und OP abholen",
			Location:          "K101, OP, Labor/Patho",
			Priority:          PriorityHigh,
			EstimatedDuration: "45 min",
		},
		{
			ID:                2,
			Time:              "07:30",
			Title:             "Pakete; HLM / APO",
			Description:       "APO - Post und TW liefern und retour",
			Location:          "Apotheke",
			Priority:          PriorityMedium,
			EstimatedDuration: "15 min",
		},
		{
			ID:                3,
			Time:              "07:45",
			Title:             "Post Service",
			Description:       "Post von der Poststelle für Seelsorge und Personalstelle mitnehmen und retour",
			Location:          "Poststelle, Seelsorge, Personal",
			Priority:          PriorityMedium,
			EstimatedDuration: "20 min",
		},
		{
			ID:                4,
			Time:              "08:30",
			Title:             `Blut "BT D" Transport`,
			Description:       `Blut "BT D" holen (ausgenommen D101 und D201)`,
			Location:          "Verschiedene Stationen",
			Priority:          PriorityHigh,
			EstimatedDuration: "30 min",
		},
		{
			ID:                5,
			Time:              "10:00",
			Title:             "IT Transport (Nur Montags)",
			Description:       "Küchentransport für IT - nur wenn Montag kein Feiertag ist",
			Location:          "Küche, IT",
			Priority:          PriorityLow,
			Condition:         "Nur Montags (Dienstags wenn Montag Feiertag)",
			EstimatedDuration: "25 min",
		},
		{
			ID:                6,
			Time:              "11:30",
			Title:             `Essenswagen "BT H"`,
			Description:       `Essenswagen "BT H" ausliefern`,
			Location:          "Küche zu Stationen",
			Priority:          PriorityMedium,
			EstimatedDuration: "20 min",
		},
		{
			ID:                7,
			Time:              "12:00-12:30",
			Title:             "Mittagspause",
			Description:       "Mittagspause",
			Location:          "Pausenraum",
			Priority:          PriorityBreak,
			EstimatedDuration: "30 min",
		},
		{
			ID:                8,
			Time:              "12:30",
			Title:             "Essenswagen Austausch",
			Description:       `Essenswagen von "BT H" Stationen einsammeln und Moppwagen austauschen BT H (HOZ) / N`,
			Location:          "Alle BT H Stationen",
			Priority:          PriorityMedium,
			EstimatedDuration: "40 min",
		},
		{
			ID:                9,
			Time:              "13:30",
			Title:             "Freitag Spezial",
			Description:       `Jeden Freitag: Mopp "Bauteil C / K / OP" ausstellen`,
			Location:          "Bauteil C, K, OP",
			Priority:          PriorityMedium,
			Condition:         "Nur Freitags (Feiertags um 14:00 Uhr)",
			EstimatedDuration: "35 min",
		},
	},
}
