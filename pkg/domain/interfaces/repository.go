package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Knowledge() KnowledgeRepository
	Setting() SettingRepository
	Personality() PersonalityRepository

	Close() error
}
