package memory

import (
	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = interfaces.ErrNotFound

// Memory is an in-memory repository for development and tests. It is
// behaviorally equivalent to the Firestore repository.
type Memory struct {
	knowledge   *knowledgeRepository
	setting     *settingRepository
	personality *personalityRepository
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		knowledge:   newKnowledgeRepository(),
		setting:     newSettingRepository(),
		personality: newPersonalityRepository(),
	}
}

func (m *Memory) Knowledge() interfaces.KnowledgeRepository {
	return m.knowledge
}

func (m *Memory) Setting() interfaces.SettingRepository {
	return m.setting
}

func (m *Memory) Personality() interfaces.PersonalityRepository {
	return m.personality
}

func (m *Memory) Close() error {
	return nil
}
