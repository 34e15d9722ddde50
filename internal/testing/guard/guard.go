package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TIDEWATER_TEST_MODE") == "" {
			_ = os.Setenv("TIDEWATER_TEST_MODE", "1")
		}
	})
}
