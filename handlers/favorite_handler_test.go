package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestAddToFavoritesUsesSetSemantics(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("first add upserts the favorites document", func(mt *mtest.T) {
		productID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		c, recorder := newTestContext(mt.T, `{"productId":"`+productID.Hex()+`"}`)
		user := authenticate(c)

		AddToFavoritesHandler(c, mt.DB)

		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

		updates := startedCommands(mt, "update")
		require.Len(t, updates, 1)
		assert.Equal(t, "favorites", updates[0].Command.Lookup("update").StringValue())

		updateDocs := commandDocuments(mt.T, updates[0], "updates")
		require.Len(t, updateDocs, 1)
		assert.True(t, updateDocs[0].Lookup("upsert").Boolean())
		assert.Equal(t, user.ID, updateDocs[0].Lookup("q").Document().Lookup("userId").ObjectID())

		// $addToSet is what makes a repeat add a no-op rather than a
		// duplicate entry.
		added := updateDocs[0].Lookup("u").Document().Lookup("$addToSet").Document()
		assert.Equal(t, productID, added.Lookup("products").ObjectID())
	})

	mt.Run("repeat add succeeds without modifying anything", func(mt *mtest.T) {
		productID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		c, recorder := newTestContext(mt.T, `{"productId":"`+productID.Hex()+`"}`)
		authenticate(c)

		AddToFavoritesHandler(c, mt.DB)

		assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	})
}

func TestRemoveFromFavorites(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("removing a product that is not favorited is a no-op", func(mt *mtest.T) {
		productID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		c, recorder := newTestContext(mt.T, `{"productId":"`+productID.Hex()+`"}`)
		authenticate(c)

		RemoveFromFavoritesHandler(c, mt.DB)

		assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	})

	mt.Run("missing favorites document is not found", func(mt *mtest.T) {
		productID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		c, recorder := newTestContext(mt.T, `{"productId":"`+productID.Hex()+`"}`)
		authenticate(c)

		RemoveFromFavoritesHandler(c, mt.DB)

		assert.Equal(t, http.StatusNotFound, recorder.Code, recorder.Body.String())
	})
}
