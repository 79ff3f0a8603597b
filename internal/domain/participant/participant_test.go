package participant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParticipant_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Participant{Name: "Ada", Surname: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", Participant{Name: "Ada"}.FullName())
}
