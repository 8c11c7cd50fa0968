package systems

import (
	"fmt"

	"dungeon-spawn/ecs"
	"dungeon-spawn/generation"
)

// MessageLog records floor lifecycle messages
type MessageLog struct {
	Messages    []string
	MaxMessages int
}

// NewMessageLog creates a new message log
func NewMessageLog() *MessageLog {
	return &MessageLog{
		Messages:    []string{},
		MaxMessages: 100,
	}
}

// Add adds a message to the log
func (ml *MessageLog) Add(message string) {
	ml.Messages = append(ml.Messages, message)

	if len(ml.Messages) > ml.MaxMessages {
		ml.Messages = ml.Messages[len(ml.Messages)-ml.MaxMessages:]
	}
}

// RecentMessages gets the n most recent messages, newest first
func (ml *MessageLog) RecentMessages(n int) []string {
	if n > len(ml.Messages) {
		n = len(ml.Messages)
	}

	result := make([]string, n)
	for i := 0; i < n; i++ {
		result[i] = ml.Messages[len(ml.Messages)-1-i]
	}

	return result
}

// Clear clears all messages
func (ml *MessageLog) Clear() {
	ml.Messages = []string{}
}

// Listen subscribes the log to dungeon and floor events
func (ml *MessageLog) Listen(events *ecs.EventManager) {
	events.Subscribe(EventFloorChanged, func(e ecs.Event) {
		changed := e.(FloorChangedEvent)
		if changed.From < 0 {
			ml.Add(fmt.Sprintf("Entered floor %d with %d HP", changed.To+1, changed.Health))
			return
		}
		ml.Add(fmt.Sprintf("Took the stairs from floor %d to floor %d (%d HP, %d gold)",
			changed.From+1, changed.To+1, changed.Health, changed.Gold))
	})
	events.Subscribe(EventVictory, func(e ecs.Event) {
		victory := e.(VictoryEvent)
		ml.Add(fmt.Sprintf("Escaped all %d floors with %d gold", victory.Floors, victory.Gold))
	})
	events.Subscribe(generation.EventFloorGenerated, func(e ecs.Event) {
		generated := e.(generation.FloorGeneratedEvent)
		ml.Add(fmt.Sprintf("Floor %d generated from seed %d: %d enemies, %d treasures",
			generated.Floor+1, generated.Seed, len(generated.Result.Slots), len(generated.Result.Treasures)))
	})
}
