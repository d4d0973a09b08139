package sendgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSendErrorWithDetail(t *testing.T) {
	body := `{"errors":[{"message":"The from address does not match a verified Sender Identity","field":"from","help":"http://sendgrid.com/docs/errors"}]}`

	err := parseSendError(403, body)
	assert.Equal(t, 403, err.StatusCode)
	assert.Len(t, err.Errors, 1)
	assert.Equal(t, "from", err.Errors[0].Field)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "Sender Identity")
}

func TestParseSendErrorWithoutDetail(t *testing.T) {
	err := parseSendError(500, "upstream exploded")
	assert.Equal(t, 500, err.StatusCode)
	assert.Empty(t, err.Errors)
	assert.Equal(t, "upstream exploded", err.Body)
	assert.Contains(t, err.Error(), "500")
}

func TestEnabled(t *testing.T) {
	assert.False(t, New("").Enabled())
	assert.True(t, New("SG.test").Enabled())
}
