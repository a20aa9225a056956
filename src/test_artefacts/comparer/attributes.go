package comparer

import (
	"entitycore/src/domain/model"

	"github.com/google/go-cmp/cmp"
)

// Attributes compares attribute sets by content, ignoring insertion order.
func Attributes() cmp.Option {
	return cmp.Comparer(func(x, y *model.Attributes) bool {
		return x.Equal(y)
	})
}
