package repository_test

import (
	"testing"

	"github.com/jaekwang-park/todo-client/internal/repository"
)

func TestClampHistoryLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-1, repository.DefaultHistoryLimit},
		{0, repository.DefaultHistoryLimit},
		{1, 1},
		{50, 50},
		{200, 200},
		{201, repository.MaxHistoryLimit},
	}
	for _, tt := range tests {
		if got := repository.ClampHistoryLimit(tt.in); got != tt.want {
			t.Errorf("ClampHistoryLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
