package grading

import "github.com/trezcool/alama/core/eval"

// Aggregate left-joins a course's schemas with a student's recorded notes:
// the result has exactly one entry per schema, in schema order, with Note
// nil where no data exists yet. Zero-defaulting is the evaluation
// boundary's business, never done here.
func Aggregate(schemas []NoteSchema, data []NoteData) []AggregatedNote {
	bySchema := make(map[int]float64, len(data))
	for _, d := range data {
		bySchema[d.SchemaID] = d.Note
	}

	notes := make([]AggregatedNote, 0, len(schemas))
	for _, s := range schemas {
		note := AggregatedNote{ID: s.ID, Name: s.Name, Type: s.Type, Weight: s.Weight}
		if v, ok := bySchema[s.ID]; ok {
			val := v
			note.Note = &val
		}
		notes = append(notes, note)
	}
	return notes
}

// components converts aggregated notes into evaluation inputs.
func components(notes []AggregatedNote) []eval.Component {
	comps := make([]eval.Component, 0, len(notes))
	for _, n := range notes {
		comps = append(comps, eval.Component{Name: n.Name, Type: n.Type, Weight: n.Weight, Value: n.Note})
	}
	return comps
}
