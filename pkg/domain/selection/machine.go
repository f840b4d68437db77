package selection

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// States of a single project's checkbox. These must remain untyped string
// constants for statekit.StateID compatibility.
const (
	StateUnselected = "unselected"
	StateSelected   = "selected"   // project checked, no task checked
	StateWithTasks  = "with_tasks" // project checked, at least one task checked
)

// Events accepted by the project machine.
const (
	EventCheck        = "check"
	EventUncheck      = "uncheck"
	EventTaskChecked  = "task_checked"
	EventTasksCleared = "tasks_cleared"
)

type machineContext struct {
	ProjectID string
}

// projectMachine tracks the checkbox state of one project.
//
// Unchecking from any state lands in StateUnselected, which is what drives the
// cascade of task deselection. Checking a task from StateUnselected promotes the
// project straight to StateWithTasks.
type projectMachine struct {
	interpreter *statekit.Interpreter[machineContext]
}

func newProjectMachine(projectID string) (*projectMachine, error) {
	builder := statekit.NewMachine[machineContext]("project-selection").
		WithInitial(statekit.StateID(StateUnselected)).
		WithContext(machineContext{ProjectID: projectID})

	builder.State(StateUnselected).
		On(EventCheck).Target(StateSelected).
		On(EventTaskChecked).Target(StateWithTasks).
		Done()

	builder.State(StateSelected).
		On(EventUncheck).Target(StateUnselected).
		On(EventTaskChecked).Target(StateWithTasks).
		Done()

	builder.State(StateWithTasks).
		On(EventUncheck).Target(StateUnselected).
		On(EventTasksCleared).Target(StateSelected).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build selection machine for %s: %w", projectID, err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &projectMachine{interpreter: interpreter}, nil
}

// send delivers an event. Events with no transition from the current state are ignored.
func (m *projectMachine) send(event string) {
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (m *projectMachine) current() string {
	return string(m.interpreter.State().Value)
}

func (m *projectMachine) selected() bool {
	return m.current() != StateUnselected
}
