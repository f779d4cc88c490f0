package logging

import "fmt"

// KV adapts a Logger to the loosely-typed keys-and-values style the
// application services declare as their logging port.
type KV struct {
	l Logger
}

// NewKV wraps l in the keys-and-values style.
func NewKV(l Logger) *KV {
	if l == nil {
		l = Default()
	}
	return &KV{l: l}
}

func (k *KV) Debug(msg string, keysAndValues ...interface{}) {
	k.l.Debug(msg, kvFields(keysAndValues)...)
}

func (k *KV) Info(msg string, keysAndValues ...interface{}) {
	k.l.Info(msg, kvFields(keysAndValues)...)
}

func (k *KV) Warn(msg string, keysAndValues ...interface{}) {
	k.l.Warn(msg, kvFields(keysAndValues)...)
}

func (k *KV) Error(msg string, keysAndValues ...interface{}) {
	k.l.Error(msg, kvFields(keysAndValues)...)
}

// kvFields pairs up the arguments.  A trailing key without a value is kept
// under the key "dangling" rather than dropped.
func kvFields(keysAndValues []interface{}) []Field {
	fields := make([]Field, 0, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields = append(fields, Any(key, keysAndValues[i+1]))
	}
	if len(keysAndValues)%2 == 1 {
		fields = append(fields, Any("dangling", keysAndValues[len(keysAndValues)-1]))
	}
	return fields
}
