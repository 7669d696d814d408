// Package engine provides the export pipeline driver.
//
// The Exporter owns the shared statement aggregate: extractors append to it
// in a fixed pass order, and the output organizer consumes it exactly once,
// after every extraction pass has finished. Failures are scoped to a single
// resource; they are logged and the batch continues.
package engine

import (
	"fmt"
	"time"

	gofsh "github.com/kodality/GoFSH"
	"github.com/kodality/GoFSH/extract"
	"github.com/kodality/GoFSH/loader"
	"github.com/kodality/GoFSH/output"
	"github.com/kodality/GoFSH/pkg/fsh"
	"github.com/kodality/GoFSH/pkg/logger"
	"github.com/kodality/GoFSH/pkg/structural"
	"github.com/kodality/GoFSH/service"
)

// Exporter converts loaded FHIR resources into packaged FSH output.
type Exporter struct {
	options *gofsh.Options
	log     *logger.Logger
	metrics *gofsh.Metrics

	fisher   *loader.InMemoryFisher
	resolver service.ValueResolver
	checker  *service.InvariantChecker

	elements  *extract.ElementExtractor
	resources *extract.ResourceExtractor
	organizer *output.Organizer
}

// New creates an Exporter with the given options.
func New(opts ...gofsh.Option) (*Exporter, error) {
	options := gofsh.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if !options.FHIRVersion.IsValid() {
		return nil, fmt.Errorf("unsupported FHIR version: %s", options.FHIRVersion)
	}

	log := options.Logger
	if log == nil {
		log = logger.Default()
	}

	var checker *service.InvariantChecker
	if options.CheckInvariants {
		checker = service.NewInvariantChecker()
	}

	resolver := extract.FSHValueResolver{}
	return &Exporter{
		options:   options,
		log:       log,
		metrics:   gofsh.NewMetrics(),
		fisher:    loader.NewInMemoryFisher(log, options.FishCacheSize),
		resolver:  resolver,
		checker:   checker,
		elements:  extract.NewElementExtractor(log, resolver, checker),
		resources: extract.NewResourceExtractor(log, resolver, options.Canonical),
		organizer: output.New(log),
	}, nil
}

// Load decodes and indexes one resource JSON document.
func (e *Exporter) Load(data []byte) error {
	return e.fisher.Load(data)
}

// Fisher exposes the underlying resource store, for loading typed models or
// extra context resources.
func (e *Exporter) Fisher() *loader.InMemoryFisher {
	return e.fisher
}

// Metrics returns the exporter's metrics.
func (e *Exporter) Metrics() *gofsh.Metrics {
	return e.metrics
}

// Export runs extraction over every loaded resource in load order, then
// packages the aggregate into named output groups. A failing resource is
// logged and skipped; its siblings still export.
func (e *Exporter) Export() (map[string]string, error) {
	start := time.Now()
	pkg := fsh.NewPackage()
	seenInvariants := map[string]bool{}

	for _, resource := range e.fisher.Resources() {
		var err error
		switch resource.GetString("resourceType") {
		case "StructureDefinition":
			err = e.processStructureDefinition(resource, pkg, seenInvariants)
		case "ValueSet":
			err = e.processValueSet(resource, pkg)
		case "CodeSystem":
			err = e.processCodeSystem(resource, pkg)
		default:
			err = e.processInstance(resource, pkg)
		}
		if err != nil {
			e.log.Error("export of %s failed: %v", resourceName(resource), err)
			continue
		}
		e.metrics.RecordResource()
	}

	files := e.organizer.Assemble(pkg, e.options.OutputStrategy)
	e.metrics.RecordExportTime(time.Since(start))
	return files, nil
}

func resourceName(resource *structural.Value) string {
	name := resource.GetString("name")
	if name == "" {
		name = resource.GetString("id")
	}
	if name == "" {
		name = resource.GetString("resourceType")
	}
	return name
}
