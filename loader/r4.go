package loader

import (
	"encoding/json"
	"fmt"

	"github.com/gofhir/fhir/r4"
)

// LoadR4StructureDefinition indexes a typed R4 StructureDefinition. The
// typed model is marshaled back to FHIR JSON and decoded into the structural
// form, so callers holding generated r4 models do not need to round-trip
// through files.
func (f *InMemoryFisher) LoadR4StructureDefinition(sd *r4.StructureDefinition) error {
	if sd == nil {
		return fmt.Errorf("structure definition is nil")
	}
	data, err := json.Marshal(sd)
	if err != nil {
		return fmt.Errorf("marshal structure definition: %w", err)
	}
	return f.Load(data)
}

// LoadR4StructureDefinitions indexes multiple typed R4 StructureDefinitions.
func (f *InMemoryFisher) LoadR4StructureDefinitions(sds []*r4.StructureDefinition) error {
	for _, sd := range sds {
		if err := f.LoadR4StructureDefinition(sd); err != nil {
			return err
		}
	}
	return nil
}
