package services

import (
	"context"
	"testing"

	"food-network-backend/internal/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostRequiresOwnMeal(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	svc := NewPostService(fx.store.Posts, fx.meals, fx.foods)
	other := fx.users.Add("Bo", "B", "b@x.edu")

	res, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay, []FoodSpec{namedSpec("soup")})
	require.NoError(t, err)

	_, err = svc.CreatePost(ctx, other.ID, CreatePostRequest{MealID: res.Meal.ID})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.CreatePost(ctx, fx.owner.ID, CreatePostRequest{MealID: uuid.New().String()})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreatePost(ctx, fx.owner.ID, CreatePostRequest{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	post, err := svc.CreatePost(ctx, fx.owner.ID, CreatePostRequest{MealID: res.Meal.ID, Description: ptr("  soup day ")})
	require.NoError(t, err)
	assert.Equal(t, res.Meal.ID, post.MealID)
	require.NotNil(t, post.Description)
	assert.Equal(t, "soup day", *post.Description)
	assert.Nil(t, post.ImageURL)
}

func TestFeedOnlyFollowedUsers(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	posts := NewPostService(fx.store.Posts, fx.meals, fx.foods)
	follows := NewNetworkService(fx.store.Network, nil)

	reader := fx.owner
	followed := fx.users.Add("Bo", "B", "b@x.edu")
	stranger := fx.users.Add("Cy", "C", "c@x.edu")

	var followedPosts []string
	for _, author := range []string{followed.ID, stranger.ID, followed.ID} {
		res, err := fx.svc.CreateMealWithFoods(ctx, author, "dinner", lunchDay, []FoodSpec{namedSpec("stew")})
		require.NoError(t, err)
		p, err := posts.CreatePost(ctx, author, CreatePostRequest{MealID: res.Meal.ID})
		require.NoError(t, err)
		if author == followed.ID {
			followedPosts = append(followedPosts, p.ID)
		}
	}

	page, err := posts.Feed(ctx, reader.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Equal(t, defaultPageSize, page.Limit)

	_, err = follows.Follow(ctx, reader.ID, followed.ID)
	require.NoError(t, err)

	page, err = posts.Feed(ctx, reader.ID, 500, -3)
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.Limit)
	assert.Equal(t, 0, page.Offset)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, followedPosts[1], page.Posts[0].ID)
	assert.Equal(t, followedPosts[0], page.Posts[1].ID)

	page, err = posts.Feed(ctx, reader.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, followedPosts[0], page.Posts[0].ID)
}

func TestPostReadsCarryPopulatedMeal(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	posts := NewPostService(fx.store.Posts, fx.meals, fx.foods)
	follows := NewNetworkService(fx.store.Network, nil)
	reader := fx.users.Add("Bo", "B", "b@x.edu")

	res, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay,
		[]FoodSpec{namedSpec("soup"), namedSpec("bread"), namedSpec("tea")})
	require.NoError(t, err)
	created, err := posts.CreatePost(ctx, fx.owner.ID, CreatePostRequest{MealID: res.Meal.ID})
	require.NoError(t, err)
	require.NotNil(t, created.Meal)
	assert.Equal(t, res.Meal.ID, created.Meal.ID)

	_, err = follows.Follow(ctx, reader.ID, fx.owner.ID)
	require.NoError(t, err)

	page, err := posts.Feed(ctx, reader.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	meal := page.Posts[0].Meal
	require.NotNil(t, meal)
	require.Len(t, meal.Items, 3)
	assert.Equal(t, "soup", meal.Items[0].FoodName)
	assert.Equal(t, "bread", meal.Items[1].FoodName)
	assert.Equal(t, "tea", meal.Items[2].FoodName)

	list, err := posts.ListPostsForUser(ctx, fx.owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Meal)
	assert.Equal(t, res.FoodIDs, list[0].Meal.Foods)

	got, err := posts.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Meal)
	assert.Len(t, got.Meal.Items, 3)
}

func TestDeletePostOwnerOnly(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	svc := NewPostService(fx.store.Posts, fx.meals, fx.foods)

	res, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay, []FoodSpec{namedSpec("soup")})
	require.NoError(t, err)
	post, err := svc.CreatePost(ctx, fx.owner.ID, CreatePostRequest{MealID: res.Meal.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeletePost(ctx, uuid.New().String(), post.ID), apperr.ErrForbidden)
	require.NoError(t, svc.DeletePost(ctx, fx.owner.ID, post.ID))

	list, err := svc.ListPostsForUser(ctx, fx.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
