// Command main fills the gateway with built-in categories and demo forum data.
package main

import (
	"flag"
	"log"

	"boatlog/internal/bootstrap"
	"boatlog/internal/config"
	"boatlog/internal/seed"
)

func main() {
	opts := seed.DefaultOptions
	flag.IntVar(&opts.Profiles, "profiles", opts.Profiles, "Number of profiles to create")
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "Number of posts to create")
	flag.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "Comments per post")
	flag.IntVar(&opts.MaxDays, "days", opts.MaxDays, "Spread timestamps over this many past days")
	flag.Int64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	flag.BoolVar(&opts.Clean, "clean", false, "Delete forum content and profiles before seeding")
	categoriesOnly := flag.Bool("categories-only", false, "Only upsert the built-in categories")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedCategories: *categoriesOnly, SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close() }()

	if *categoriesOnly {
		return
	}

	res, err := seed.NewSeeder(rt.DB).Run(opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d categories, %d profiles, %d posts, %d comments",
		res.Categories, res.Profiles, res.Posts, res.Comments)
}
