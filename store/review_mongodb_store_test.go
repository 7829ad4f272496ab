package store

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
)

func TestOrderReviewsFollowsReferenceSequence(t *testing.T) {
	first := primitive.NewObjectID()
	missing := primitive.NewObjectID()
	last := primitive.NewObjectID()

	byID := map[primitive.ObjectID]*domain.Review{
		last:  {ID: last, Comment: "later stay"},
		first: {ID: first, Comment: "earlier stay"},
	}

	got := orderReviews([]primitive.ObjectID{first, missing, last}, byID)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 with the dangling id skipped", len(got))
	}
	if got[0].ID != first || got[1].ID != last {
		t.Errorf("order = [%s %s], want [%s %s]", got[0].ID.Hex(), got[1].ID.Hex(), first.Hex(), last.Hex())
	}
}

func TestOrderReviewsEmpty(t *testing.T) {
	if got := orderReviews(nil, map[primitive.ObjectID]*domain.Review{}); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
