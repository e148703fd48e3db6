package staff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/staffdir/staffdir/internal/platform/httpx"
	"github.com/staffdir/staffdir/internal/token"
)

func TestDesiredAssociationsParsesReferences(t *testing.T) {
	in := UpdateInput{
		Groups:   []int64{3, 7},
		Contacts: []ContactInput{{Contact: 1, Value: "mail@example.test"}},
		Properties: []PropertyInput{
			{Property: 2, Value: "blue"},
			{Property: 2, Value: "bleu", Lang: 4},
		},
		References: []ReferenceInput{{Property: 5, Value: "42"}},
	}

	assoc, err := desiredAssociations(in)
	require.NoError(t, err)
	require.Equal(t, []Membership{{Group: 3}, {Group: 7}}, assoc.Memberships)
	require.Equal(t, []ContactValue{{Contact: 1, Value: "mail@example.test"}}, assoc.Contacts)
	require.Equal(t, []StringProperty{
		{Property: 2, Value: "blue"},
		{Property: 2, Value: "bleu", Lang: 4},
	}, assoc.Properties)
	require.Equal(t, []UserReference{{Property: 5, Child: 42}}, assoc.References)
}

func TestDesiredAssociationsRejectsMalformedReference(t *testing.T) {
	for _, value := range []string{"", "bob", "12x", "4.5"} {
		in := UpdateInput{References: []ReferenceInput{{Property: 5, Value: value}}}
		_, err := desiredAssociations(in)
		require.ErrorIs(t, err, httpx.ErrAssociation, "value %q", value)
	}
}

// A malformed reference value fails the update before the service touches the
// store: the nil pool would panic on any transaction attempt.
func TestUpdateFailsFastOnBadReference(t *testing.T) {
	svc := NewService(nil, nil, nil, nil)
	in := UpdateInput{
		Email:      "mail@example.test",
		Name:       "Somebody",
		References: []ReferenceInput{{Property: 5, Value: "not-an-id"}},
	}

	_, err := svc.Update(context.Background(), token.Account{ID: 1}, 10, in)
	require.ErrorIs(t, err, httpx.ErrAssociation)
}

func TestDetailRoundTripsReferences(t *testing.T) {
	assoc := Associations{
		References: []UserReference{{Property: 5, Child: 42}},
	}
	detail := toDetail(User{ID: 10}, assoc)
	require.Equal(t, []ReferenceInput{{Property: 5, Value: "42"}}, detail.References)
}
