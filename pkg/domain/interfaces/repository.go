package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Precedent() PrecedentRepository
	Report() ReportRepository
	Close() error
}
