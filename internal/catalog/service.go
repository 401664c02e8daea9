package catalog

// DefaultChannelSize bounds the queue between the scan producer and the persister.
const DefaultChannelSize = 10000

// Options holds the resolved settings the Service needs.
type Options struct {
	// DefaultRoot is scanned when Scan is called without a root.
	DefaultRoot string
	// ChannelSize is the capacity of the producer/persister queue.
	ChannelSize int
	// BatchSize selects the persister mode; see Persister.
	BatchSize int
	// Hostname is the "<host>:<user>" identity stamped on entries and events.
	Hostname string
	// HostID names this machine's catalog snapshots in a vault.
	HostID string

	MatchMode     MatchMode
	CaseSensitive bool
}

// Service is the orchestration layer for the catalog: it runs scans,
// answers searches and manages catalog snapshots.
type Service struct {
	store     Store
	walker    Walker
	filter    *Filter
	ignoreFor func(root string) (PathMatcher, error)
	vault     Vault
	encryptor Encryptor
	logger    Logger
	clock     Clock
	idgen     IDGenerator
	opts      Options
}

// NewService creates a new Service with the provided dependencies.
func NewService(store Store, walker Walker, filter *Filter, logger Logger, clock Clock, idgen IDGenerator, opts Options) *Service {
	if opts.ChannelSize <= 0 {
		opts.ChannelSize = DefaultChannelSize
	}
	if opts.MatchMode == "" {
		opts.MatchMode = MatchSubstring
	}
	return &Service{
		store:  store,
		walker: walker,
		filter: filter,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
		opts:   opts,
	}
}

// SetBackupTarget configures where Backup and RestoreCatalog move snapshots.
func (s *Service) SetBackupTarget(v Vault, enc Encryptor) {
	s.vault = v
	s.encryptor = enc
}

// SetIgnoreLoader makes Scan build its ignore matcher from the scan root.
func (s *Service) SetIgnoreLoader(load func(root string) (PathMatcher, error)) {
	s.ignoreFor = load
}
