// Package seed fills a development database with demo users and posts.
package seed

import (
	"fmt"
	"log"
	"strings"

	"blog/internal/services"

	"github.com/brianvoe/gofakeit/v6"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// Options controls how much demo data is created.
type Options struct {
	Users        int
	PostsPerUser int
	Seed         int64 // zero picks a random seed
}

// Result counts what was created.
type Result struct {
	Users int
	Posts int
}

// Demo registers fake users through the normal registration rules and gives
// each of them a few posts. Generated names that collide are skipped.
func Demo(auth *services.AuthService, posts *services.PostService, opts Options) (Result, error) {
	faker := gofakeit.New(opts.Seed)
	var res Result

	for i := 0; i < opts.Users; i++ {
		username := Username(faker.Username(), faker.Number(100, 999))
		user, err := auth.RegisterUser(services.RegisterInput{
			Username:        username,
			Email:           strings.ToLower(username) + "@" + faker.DomainName(),
			Password:        DemoPassword,
			ConfirmPassword: DemoPassword,
		})
		if err != nil {
			log.Printf("Skipping demo user %s: %v", username, err)
			continue
		}
		res.Users++

		for j := 0; j < opts.PostsPerUser; j++ {
			_, err := posts.CreatePost(user, services.PostInput{
				Title:   faker.Sentence(5),
				Content: faker.Paragraph(1, 3, 5, "\n"),
			})
			if err != nil {
				return res, fmt.Errorf("failed to seed post for %s: %w", username, err)
			}
			res.Posts++
		}
	}

	log.Printf("Seeded %d demo users and %d posts", res.Users, res.Posts)
	return res, nil
}

// Username turns a generated name into one that passes the username rules:
// letters first, only letters, digits, dots and underscores, at most 25 chars.
func Username(base string, suffix int) string {
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case (r >= '0' && r <= '9') || r == '.' || r == '_':
			if b.Len() > 0 {
				b.WriteRune(r)
			}
		}
	}
	name := b.String()
	if name == "" {
		name = "user"
	}
	if len(name) > 21 {
		name = name[:21]
	}
	return fmt.Sprintf("%s%d", name, suffix)
}
