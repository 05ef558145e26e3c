package task

// Task is a spawned unit of work: one Future and the ID it is scheduled by.
//
// After Spawn a Task is owned by the executor's task table. It is dropped the
// moment its future returns Ready.
type Task struct {
	id     TaskID
	name   string
	future Future
}

// NewTask wraps future in a task with a fresh ID.
func NewTask(future Future) *Task {
	return &Task{id: NewTaskID(), future: future}
}

// NewNamedTask is NewTask with a name that shows up in traces.
func NewNamedTask(name string, future Future) *Task {
	t := NewTask(future)
	t.name = name
	return t
}

// ID returns the task's ID.
func (t *Task) ID() TaskID { return t.id }

// Name returns the trace name, or the ID when the task is unnamed.
func (t *Task) Name() string {
	if t.name == "" {
		return t.id.String()
	}
	return t.name
}

// Poll advances the task's future by one step.
func (t *Task) Poll(cx *Context) Poll {
	return t.future.Poll(cx)
}
