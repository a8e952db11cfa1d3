package seed

import (
	"fmt"
	"time"

	"boatlog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var (
	boatParts = []string{
		"impeller", "startbatteri", "dieselfilter", "vannlås", "sjøventil", "propell",
		"rorkult", "vant", "forstag", "rullefokk", "lensepumpe", "landstrømkabel",
		"kjølevannsslange", "anode", "gasskabel", "girolje",
	}

	problems = []string{
		"lekker", "rusler", "går varm", "har slitt seg", "lader ikke", "sitter fast",
		"må byttes", "lager ulyd", "har korrodert",
	}

	boatModels = []string{
		"Askeladden C61", "Bavaria 34", "Grand Soleil 34", "Nimbus 26", "Marex 310",
		"Hallberg-Rassy 312", "Yamarin 63", "Ibiza 22", "Windy 27", "Albin Vega",
	}
)

// Factory builds forum entities with plausible boat maintenance content.
// A seeded factory produces the same sequence every run.
type Factory struct {
	faker   *gofakeit.Faker
	maxDays int
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(seed int64, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{faker: gofakeit.New(seed), maxDays: maxDays}
}

// Profile builds an identity profile with a fresh ID.
func (f *Factory) Profile() models.UserProfile {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	created := f.pastTime()
	return models.UserProfile{
		ID:          uuid.New(),
		Email:       fmt.Sprintf("%s.%s%d@%s", first, last, f.faker.Number(10, 99), f.faker.DomainName()),
		DisplayName: first + " " + last,
		CreatedAt:   &created,
	}
}

// Stats builds a stats row whose rank follows its points.
func (f *Factory) Stats(userID uuid.UUID) models.UserStats {
	points := f.faker.Number(0, 3000)
	return models.UserStats{
		UserID:        userID,
		Points:        points,
		Rank:          models.RankForPoints(points),
		PostsCount:    f.faker.Number(0, 120),
		CommentsCount: f.faker.Number(0, 400),
		LikesReceived: f.faker.Number(0, points/5+1),
	}
}

// Post builds a question about a part on a named boat.
func (f *Factory) Post(userID, categoryID uuid.UUID) models.Post {
	part := f.faker.RandomString(boatParts)
	created := f.pastTime()
	return models.Post{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Title:      fmt.Sprintf("%s %s på %s", capitalize(part), f.faker.RandomString(problems), f.faker.RandomString(boatModels)),
		Content:    f.faker.Paragraph(2, 3, 12, "\n\n"),
		IsPinned:   f.faker.Number(1, 40) == 1,
		ViewCount:  f.faker.Number(0, 2500),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

// Comment builds a reply posted after the post it answers.
func (f *Factory) Comment(post models.Post, userID uuid.UUID) models.Comment {
	created := post.CreatedAt.Add(time.Duration(f.faker.Number(5, 72*60)) * time.Minute)
	if created.After(time.Now()) {
		created = time.Now()
	}
	return models.Comment{
		ID:        uuid.New(),
		PostID:    post.ID,
		UserID:    userID,
		Content:   f.faker.Sentence(f.faker.Number(6, 30)),
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// Pick returns a random index below n.
func (f *Factory) Pick(n int) int {
	return f.faker.Number(0, n-1)
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

func capitalize(s string) string {
	for i, r := range s {
		if i == 0 && r >= 'a' && r <= 'z' {
			return string(r-'a'+'A') + s[1:]
		}
		break
	}
	return s
}
