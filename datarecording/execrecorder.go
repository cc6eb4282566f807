package datarecording

import (
	"os"
	"strings"
	"time"
)

// ExecInfo is a property of a program execution.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecTableName is the table that holds the execution information.
const ExecTableName = "exec_info"

const execTimeFormat = "2006-01-02 15:04:05.000000000"

// ExecRecorder records how a program was executed.
type ExecRecorder struct {
	tablename string
	recorder  DataRecorder
	entries   []ExecInfo
}

// NewExecRecorder creates an ExecRecorder that writes into the recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	e := &ExecRecorder{
		tablename: ExecTableName,
		recorder:  recorder,
	}

	e.recorder.CreateTable(e.tablename, ExecInfo{})

	return e
}

// Start logs the current execution.
func (e *ExecRecorder) Start() {
	startTime := time.Now().Format(execTimeFormat)
	e.entries = append(e.entries, ExecInfo{"Start Time", startTime})

	cmd := strings.Join(os.Args, " ")
	e.entries = append(e.entries, ExecInfo{"Command", cmd})

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	e.entries = append(e.entries, ExecInfo{"Working Directory", cwd})
}

// Set records an extra property, such as a simulation parameter.
func (e *ExecRecorder) Set(property, value string) {
	e.entries = append(e.entries, ExecInfo{property, value})
}

// End writes data into the recorder along with program exit time.
func (e *ExecRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(e.tablename, entry)
	}

	endTime := time.Now().Format(execTimeFormat)
	e.recorder.InsertData(e.tablename, ExecInfo{"End Time", endTime})

	e.entries = nil

	e.recorder.Flush()
}
