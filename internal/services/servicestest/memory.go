// Package servicestest provides in-memory implementations of the service store
// interfaces. They mirror the table constraints: duplicate emails and follow pairs are
// rejected, and follow edges require both users to exist.
package servicestest

import (
	"context"
	"sort"
	"sync"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	"github.com/google/uuid"
)

// Store bundles one of each in-memory store, wired to each other
type Store struct {
	Users   *Users
	Foods   *Foods
	Meals   *Meals
	Network *Network
	Posts   *Posts
}

// New creates an empty Store
func New() *Store {
	users := NewUsers()
	foods := &Foods{}
	network := &Network{users: users}
	return &Store{
		Users:   users,
		Foods:   foods,
		Meals:   &Meals{foods: foods},
		Network: network,
		Posts:   &Posts{network: network, users: users},
	}
}

// Users is an in-memory services.UserStore. AppendErr, when set, fails AppendMeal.
type Users struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	AppendErr error
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]*models.User)}
}

// Add inserts a user directly, bypassing registration
func (f *Users) Add(first, last, email string) *models.User {
	u := &models.User{ID: uuid.New().String(), FirstName: first, LastName: last, Email: email, Meals: []string{}}
	f.mu.Lock()
	f.byID[u.ID] = u
	f.mu.Unlock()
	return u
}

func (f *Users) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return apperr.ErrDuplicateEmail
		}
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	cp.Meals = append([]string{}, u.Meals...)
	return &cp, nil
}

func (f *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (f *Users) List(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*models.User, 0, len(f.byID))
	for _, u := range f.byID {
		cp := *u
		users = append(users, &cp)
	}
	return users, nil
}

func (f *Users) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	u, ok := f.byID[id]
	if !ok {
		f.mu.Unlock()
		return nil, apperr.NotFound("user")
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Bio != nil {
		u.Bio = upd.Bio
	}
	f.mu.Unlock()
	return f.GetByID(ctx, id)
}

func (f *Users) SetProfilePic(ctx context.Context, id string, url *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.ProfilePic = url
	return nil
}

func (f *Users) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.PushToken = pushToken
	return nil
}

func (f *Users) AppendMeal(ctx context.Context, userID, mealID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AppendErr != nil {
		return f.AppendErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return apperr.NotFound("user")
	}
	u.Meals = append(u.Meals, mealID)
	return nil
}

func (f *Users) RemoveMeal(ctx context.Context, userID, mealID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return apperr.NotFound("user")
	}
	kept := []string{}
	for _, id := range u.Meals {
		if id != mealID {
			kept = append(kept, id)
		}
	}
	u.Meals = kept
	return nil
}

// Foods is an in-memory services.FoodStore. AssignErr, when set, fails AssignMeal.
type Foods struct {
	mu        sync.Mutex
	rows      []*models.Food
	AssignErr error
}

func (f *Foods) Create(ctx context.Context, food *models.Food) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *food
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *Foods) find(id string) *models.Food {
	for _, r := range f.rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *Foods) GetByID(ctx context.Context, id string) (*models.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.find(id)
	if r == nil {
		return nil, apperr.NotFound("food")
	}
	cp := *r
	return &cp, nil
}

func (f *Foods) GetByIDs(ctx context.Context, ids []string) ([]*models.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Food{}
	for _, id := range ids {
		if r := f.find(id); r != nil {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *Foods) ListByUser(ctx context.Context, userID string, filter models.FoodFilter) ([]*models.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Food{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		r := f.rows[i]
		if r.UserID != userID {
			continue
		}
		if filter.MealTime != "" && r.MealTime != filter.MealTime {
			continue
		}
		if !filter.From.IsZero() && r.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !r.Date.Before(filter.To) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *Foods) Update(ctx context.Context, id string, upd models.FoodUpdate) (*models.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.find(id)
	if r == nil {
		return nil, apperr.NotFound("food")
	}
	if upd.FoodName != nil {
		r.FoodName = *upd.FoodName
	}
	if upd.Calories != nil {
		r.Calories = *upd.Calories
	}
	if upd.MealTime != nil {
		r.MealTime = *upd.MealTime
	}
	cp := *r
	return &cp, nil
}

func (f *Foods) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("food")
}

func (f *Foods) AssignMeal(ctx context.Context, mealID string, foodIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AssignErr != nil {
		return f.AssignErr
	}
	for _, id := range foodIDs {
		if r := f.find(id); r != nil {
			m := mealID
			r.MealID = &m
		}
	}
	return nil
}

func (f *Foods) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// Meals is an in-memory services.MealStore. TxErr, when set, fails CreateWithFoods
// before anything is written.
type Meals struct {
	mu    sync.Mutex
	foods *Foods
	rows  []*models.Meal
	TxErr error
}

func (f *Meals) Create(ctx context.Context, meal *models.Meal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *meal
	cp.Foods = append([]string{}, meal.Foods...)
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *Meals) CreateWithFoods(ctx context.Context, meal *models.Meal, foods []*models.Food) error {
	if f.TxErr != nil {
		return f.TxErr
	}
	for _, food := range foods {
		_ = f.foods.Create(ctx, food)
	}
	return f.Create(ctx, meal)
}

func (f *Meals) GetByID(ctx context.Context, id string) (*models.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			cp := *r
			cp.Foods = append([]string{}, r.Foods...)
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("meal")
}

func (f *Meals) GetByIDs(ctx context.Context, ids []string) ([]*models.Meal, error) {
	out := []*models.Meal{}
	for _, id := range ids {
		m, err := f.GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *Meals) ListByUser(ctx context.Context, userID string, filter models.MealFilter) ([]*models.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Meal{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		r := f.rows[i]
		if r.UserID != userID {
			continue
		}
		if !filter.From.IsZero() && r.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !r.Date.Before(filter.To) {
			continue
		}
		if filter.MealTime != "" && r.MealTime != filter.MealTime {
			continue
		}
		cp := *r
		cp.Foods = append([]string{}, r.Foods...)
		out = append(out, &cp)
	}
	return out, nil
}

func (f *Meals) AppendFood(ctx context.Context, mealID, foodID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == mealID {
			r.Foods = append(r.Foods, foodID)
			return nil
		}
	}
	return apperr.NotFound("meal")
}

func (f *Meals) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("meal")
}

func (f *Meals) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// Network is an in-memory services.NetworkStore
type Network struct {
	mu    sync.Mutex
	users *Users
	edges []*models.FollowEdge
}

func (f *Network) Create(ctx context.Context, edge *models.FollowEdge) error {
	if _, err := f.users.GetByID(ctx, edge.FollowerID); err != nil {
		return err
	}
	if _, err := f.users.GetByID(ctx, edge.FollowingID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if edge.FollowerID == edge.FollowingID {
		return apperr.ErrSelfFollow
	}
	for _, e := range f.edges {
		if e.FollowerID == edge.FollowerID && e.FollowingID == edge.FollowingID {
			return apperr.ErrDuplicateFollow
		}
	}
	cp := *edge
	f.edges = append(f.edges, &cp)
	return nil
}

func (f *Network) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			f.edges = append(f.edges[:i], f.edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *Network) list(ctx context.Context, match func(*models.FollowEdge) (bool, string)) ([]*models.FollowEntry, error) {
	f.mu.Lock()
	edges := append([]*models.FollowEdge{}, f.edges...)
	f.mu.Unlock()

	out := []*models.FollowEntry{}
	for i := len(edges) - 1; i >= 0; i-- {
		ok, other := match(edges[i])
		if !ok {
			continue
		}
		u, err := f.users.GetByID(ctx, other)
		if err != nil {
			return nil, err
		}
		out = append(out, &models.FollowEntry{FollowEdge: *edges[i], User: u.Public()})
	}
	return out, nil
}

func (f *Network) ListFollowers(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	return f.list(ctx, func(e *models.FollowEdge) (bool, string) { return e.FollowingID == userID, e.FollowerID })
}

func (f *Network) ListFollowing(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	return f.list(ctx, func(e *models.FollowEdge) (bool, string) { return e.FollowerID == userID, e.FollowingID })
}

// Len returns the number of stored edges
func (f *Network) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edges)
}

func (f *Network) Counts(ctx context.Context, userID string) (models.FollowCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var c models.FollowCounts
	for _, e := range f.edges {
		if e.FollowingID == userID {
			c.Followers++
		}
		if e.FollowerID == userID {
			c.Following++
		}
	}
	return c, nil
}

func (f *Network) following(followerID string) map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := make(map[string]bool)
	for _, e := range f.edges {
		if e.FollowerID == followerID {
			set[e.FollowingID] = true
		}
	}
	return set
}

// Posts is an in-memory services.PostStore that fills in the author like the joined query does
type Posts struct {
	mu      sync.Mutex
	network *Network
	users   *Users
	rows    []*models.Post
}

func (f *Posts) Create(ctx context.Context, post *models.Post) error {
	author, err := f.users.GetByID(ctx, post.UserID)
	if err != nil {
		return err
	}
	profile := author.Public()
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *post
	cp.Author = &profile
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *Posts) GetByID(ctx context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("post")
}

func (f *Posts) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Post{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			cp := *f.rows[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *Posts) Feed(ctx context.Context, followerID string, limit, offset int) ([]*models.Post, int, error) {
	followed := f.network.following(followerID)
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*models.Post
	for i := len(f.rows) - 1; i >= 0; i-- {
		if followed[f.rows[i].UserID] {
			cp := *f.rows[i]
			all = append(all, &cp)
		}
	}
	total := len(all)
	if offset >= total {
		return []*models.Post{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *Posts) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("post")
}

// Blobs records stored keys and deleted URLs. PutErr, when set, fails Put.
type Blobs struct {
	mu      sync.Mutex
	puts    []string
	deleted []string
	PutErr  error
}

func (f *Blobs) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PutErr != nil {
		return "", f.PutErr
	}
	f.puts = append(f.puts, key)
	return "https://cdn.test/" + key, nil
}

func (f *Blobs) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

// Puts returns the keys stored so far
func (f *Blobs) Puts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.puts...)
}

// Deleted returns the URLs deleted so far
func (f *Blobs) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.deleted...)
}

// PushCall is one recorded push
type PushCall struct {
	Token string
	Alert string
	Data  map[string]any
}

// Pusher records pushes instead of sending them
type Pusher struct {
	mu    sync.Mutex
	calls []PushCall
}

func (f *Pusher) Send(ctx context.Context, deviceToken, alert string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, PushCall{Token: deviceToken, Alert: alert, Data: data})
	return nil
}

// Calls returns the pushes recorded so far
func (f *Pusher) Calls() []PushCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PushCall{}, f.calls...)
}
