package generator

import "context"

// Kind identifies an object type that has its own generator
type Kind string

const (
	KindCommand      Kind = "command"
	KindTimeperiod   Kind = "timeperiod"
	KindHost         Kind = "host"
	KindService      Kind = "service"
	KindContactGroup Kind = "contactgroup"
	KindContact      Kind = "contact"
	KindDependency   Kind = "dependency"
	KindEscalation   Kind = "escalation"
)

// fileNames maps each kind to the configuration file it appends to
var fileNames = map[Kind]string{
	KindCommand:      "centreon-bam-command.cfg",
	KindTimeperiod:   "centreon-bam-timeperiod.cfg",
	KindHost:         "centreon-bam-host.cfg",
	KindService:      "centreon-bam-services.cfg",
	KindContactGroup: "centreon-bam-contactgroups.cfg",
	KindContact:      "centreon-bam-contacts.cfg",
	KindDependency:   "centreon-bam-dependencies.cfg",
	KindEscalation:   "centreon-bam-escalations.cfg",
}

// Kinds returns every kind in the order a pass steps through them.
// Contacts come last because they are only ever pulled by contact groups.
func Kinds() []Kind {
	return []Kind{
		KindCommand,
		KindTimeperiod,
		KindHost,
		KindService,
		KindContactGroup,
		KindDependency,
		KindEscalation,
		KindContact,
	}
}

// FileName returns the name of the file objects of this kind are written to
func (k Kind) FileName() string {
	return fileNames[k]
}

// Result is the outcome of a single generation request
type Result int

const (
	// Emitted means a block was written for the key
	Emitted Result = iota
	// Skipped means the key was already emitted in this pass
	Skipped
	// NotFound means the key could not be materialized: the row is missing,
	// inactive, a template or not relevant to the node
	NotFound
)

func (r Result) String() string {
	switch r {
	case Emitted:
		return "emitted"
	case Skipped:
		return "skipped"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Resolved reports whether the object exists in the output after the request
func (r Result) Resolved() bool {
	return r == Emitted || r == Skipped
}

// Generator is the capability shared by every per-type generator
type Generator interface {
	// Kind returns the object type handled by the generator
	Kind() Kind
	// GenerateAll emits every object of this kind relevant to the node
	GenerateAll(ctx context.Context) error
	// Reset forgets every emitted key and removes the output file
	Reset() error
	// Count returns the number of objects emitted in the current pass
	Count() int
	// Path returns the output file of the generator
	Path() string
}
