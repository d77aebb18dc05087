// Package undo provides the undo/redo history that hosts push edit commands onto.
package undo

// Command is one reversible edit.
type Command interface {
	Undo()
	Redo()
	String() string
}

// Stack is a linear undo history. It is not safe for concurrent use; the host
// drives it from its input loop.
type Stack struct {
	limit  int
	done   []Command
	undone []Command
}

// NewStack creates a stack keeping at most limit commands. limit <= 0 keeps all.
func NewStack(limit int) *Stack {
	return &Stack{limit: limit}
}

// Push records a command that has already been applied. It clears the redo
// history and drops the oldest command past the limit.
func (s *Stack) Push(cmd Command) {
	if cmd == nil {
		return
	}
	s.done = append(s.done, cmd)
	s.undone = s.undone[:0]
	if s.limit > 0 && len(s.done) > s.limit {
		drop := len(s.done) - s.limit
		clear(s.done[:drop])
		s.done = s.done[drop:]
	}
}

// Undo reverts the most recent command and returns it, or nil if there is none.
func (s *Stack) Undo() Command {
	if len(s.done) == 0 {
		return nil
	}
	cmd := s.done[len(s.done)-1]
	s.done = s.done[:len(s.done)-1]
	cmd.Undo()
	s.undone = append(s.undone, cmd)
	return cmd
}

// Redo reapplies the most recently undone command and returns it, or nil if there is none.
func (s *Stack) Redo() Command {
	if len(s.undone) == 0 {
		return nil
	}
	cmd := s.undone[len(s.undone)-1]
	s.undone = s.undone[:len(s.undone)-1]
	cmd.Redo()
	s.done = append(s.done, cmd)
	return cmd
}

// CanUndo reports whether Undo would do anything.
func (s *Stack) CanUndo() bool { return len(s.done) > 0 }

// CanRedo reports whether Redo would do anything.
func (s *Stack) CanRedo() bool { return len(s.undone) > 0 }

// Len returns the number of undoable commands.
func (s *Stack) Len() int { return len(s.done) }

// Clear forgets all history.
func (s *Stack) Clear() {
	s.done = nil
	s.undone = nil
}
