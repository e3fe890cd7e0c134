package goroutine

import (
	"fmt"
	"os"
	"runtime/debug"
)

// PanicLogger принимает сообщения о перехваченных паниках.
type PanicLogger interface {
	Errorf(format string, args ...interface{})
}

type stderrLogger struct{}

func (stderrLogger) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

var panicLog PanicLogger = stderrLogger{}

// SetLogger подменяет приёмник сообщений о панике.
// Вызывается один раз при старте процесса; до вызова паники пишутся в stderr.
func SetLogger(l PanicLogger) {
	if l != nil {
		panicLog = l
	}
}

// SafeGo запускает fn в отдельной горутине и перехватывает панику,
// чтобы фоновая задача не уронила процесс.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicLog.Errorf("panic in background goroutine: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
