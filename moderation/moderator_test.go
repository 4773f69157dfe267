package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "chat-relay/errors"
)

func Test_Censor_Replaces_Matched_Words(t *testing.T) {
	req := require.New(t)

	m, err := NewModerator([]string{"badword", "worse"}, '*')
	req.NoError(err)

	req.Equal("this is a *******", m.Censor("this is a badword"))
	req.Equal("***** and *******", m.Censor("worse and badword"))
}

func Test_Censor_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)

	m, err := NewModerator([]string{"badword"}, '*')
	req.NoError(err)

	req.Equal("*******!", m.Censor("BadWord!"))
}

func Test_Censor_Leaves_Clean_Text_Untouched(t *testing.T) {
	req := require.New(t)

	m, err := NewModerator([]string{"badword"}, '*')
	req.NoError(err)

	clean := "a perfectly fine sentence"
	req.Equal(clean, m.Censor(clean))
	req.Equal("", m.Censor(""))
}

func Test_NewModerator_Rejects_Empty_Word_List(t *testing.T) {
	req := require.New(t)

	_, err := NewModerator(nil, '*')
	req.ErrorIs(err, apperrors.ErrEmptyWords)

	_, err = NewModerator([]string{"  ", ""}, '*')
	req.ErrorIs(err, apperrors.ErrEmptyWords)
}
