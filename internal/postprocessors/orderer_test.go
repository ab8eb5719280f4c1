package postprocessors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

func TestAssignGlobalOrder(t *testing.T) {
	t.Run("flattens in document order", func(t *testing.T) {
		docs := [][]domain.Chunk{
			{{ID: "a_c0", Order: 0}, {ID: "a_c1", Order: 1}},
			{},
			{{ID: "b_c0", Order: 0}},
			{{ID: "c_c0", Order: 0}, {ID: "c_c1", Order: 1}, {ID: "c_c2", Order: 2}},
		}

		ordered := AssignGlobalOrder(docs)

		ids := make([]string, len(ordered))
		for i, c := range ordered {
			ids[i] = c.ID
			assert.Equal(t, i, c.Order)
		}
		assert.Equal(t, []string{"a_c0", "a_c1", "b_c0", "c_c0", "c_c1", "c_c2"}, ids)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		docs := [][]domain.Chunk{
			{{ID: "a_c0", Order: 0}},
			{{ID: "b_c0", Order: 0}},
		}

		_ = AssignGlobalOrder(docs)

		assert.Equal(t, 0, docs[1][0].Order)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, AssignGlobalOrder(nil))
	})
}
