package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brainbolt/quiz-engine/internal/db/repository"
	"github.com/brainbolt/quiz-engine/internal/session"
)

type seedQuestion struct {
	difficulty int
	prompt     string
	choices    []string
	correct    string
}

var seedQuestions = []seedQuestion{
	{1, "What is 2 + 2?", []string{"3", "4", "5", "6"}, "4"},
	{1, "Capital of France?", []string{"London", "Berlin", "Paris", "Madrid"}, "Paris"},
	{1, "Largest planet in our solar system?", []string{"Earth", "Mars", "Jupiter", "Saturn"}, "Jupiter"},
	{2, "What is 15% of 200?", []string{"20", "30", "25", "35"}, "30"},
	{2, "Who wrote Romeo and Juliet?", []string{"Dickens", "Shakespeare", "Austen", "Orwell"}, "Shakespeare"},
	{2, "Atomic number of Carbon?", []string{"6", "12", "8", "14"}, "6"},
	{3, "Solve: 3x + 7 = 22", []string{"x = 4", "x = 5", "x = 6", "x = 7"}, "x = 5"},
	{3, "In which year did WWII end?", []string{"1943", "1944", "1945", "1946"}, "1945"},
	{3, "What is the speed of light in m/s (approx)?", []string{"3e6", "3e8", "3e10", "3e12"}, "3e8"},
	{4, "Derivative of x^3?", []string{"x^2", "2x^2", "3x^2", "3x"}, "3x^2"},
	{4, "Which is a prime number?", []string{"49", "51", "53", "57"}, "53"},
	{4, "Hex color for white?", []string{"#000000", "#FFFFFF", "#FFFF00", "#FF0000"}, "#FFFFFF"},
	{5, "Integral of 1/x dx?", []string{"x^2", "ln|x|", "1/x^2", "e^x"}, "ln|x|"},
	{5, "First programming language?", []string{"C", "Fortran", "COBOL", "Assembly"}, "Fortran"},
	{5, "TCP port for HTTPS?", []string{"80", "443", "8080", "22"}, "443"},
	{6, "Time complexity of binary search?", []string{"O(n)", "O(log n)", "O(n^2)", "O(1)"}, "O(log n)"},
	{6, "What does API stand for?", []string{"Application Program Interface", "Application Programming Interface", "Applied Program Interface", "Automated Programming Interface"}, "Application Programming Interface"},
	{6, "React is maintained by?", []string{"Google", "Microsoft", "Meta", "Amazon"}, "Meta"},
	{7, "Big-O of merge sort?", []string{"O(n)", "O(n log n)", "O(n^2)", "O(log n)"}, "O(n log n)"},
	{7, "Which is not a NoSQL DB?", []string{"MongoDB", "Redis", "PostgreSQL", "Cassandra"}, "PostgreSQL"},
	{7, "HTTP method for creating a resource?", []string{"GET", "PUT", "POST", "DELETE"}, "POST"},
	{8, "CAP theorem: which two can you have?", []string{"CP", "AP", "CA", "All three"}, "CP"},
	{8, "Docker uses which isolation?", []string{"VMs", "Containers", "Chroot only", "Namespaces only"}, "Containers"},
	{8, "GraphQL was created by?", []string{"Google", "Facebook", "Netflix", "Twitter"}, "Facebook"},
	{9, "Kubernetes was originally designed by?", []string{"Microsoft", "Google", "Amazon", "Red Hat"}, "Google"},
	{9, "Eventual consistency is associated with?", []string{"ACID", "BASE", "SQL", "CAP"}, "BASE"},
	{9, "Which is a monotonic clock?", []string{"Date.now()", "performance.now()", "setTimeout", "setInterval"}, "performance.now()"},
	{10, "CRDT stands for?", []string{"Conflict-free Replicated Data Type", "Consistent Replicated Data Type", "Concurrent Replicated Data Type", "Causal Replicated Data Type"}, "Conflict-free Replicated Data Type"},
	{10, "Raft consensus: how many nodes for fault tolerance 1?", []string{"2", "3", "4", "5"}, "3"},
	{10, "Paxos was proposed by?", []string{"Leslie Lamport", "Barbara Liskov", "Leslie Valiant", "Butler Lampson"}, "Leslie Lamport"},
}

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Warn().Err(err).Msg("could not load .env file")
		}
	}

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	connString := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("PG_HOST", "localhost"), getEnv("PG_PORT", "5432"),
		os.Getenv("PG_USER"), os.Getenv("PG_PASSWORD"), os.Getenv("PG_DATABASE"),
		getEnv("PG_SSL_MODE", "disable"))

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	repo := repository.NewQuestionRepository(pool)

	// Deterministic ids per (difficulty, position) keep reruns idempotent
	// through the repository's conflict-ignoring insert.
	perDifficulty := make(map[int]int)
	seeded := 0
	for _, q := range seedQuestions {
		perDifficulty[q.difficulty]++
		question := session.Question{
			ID:                fmt.Sprintf("q-d%02d-%03d", q.difficulty, perDifficulty[q.difficulty]),
			Difficulty:        q.difficulty,
			Prompt:            q.prompt,
			Choices:           q.choices,
			CorrectAnswerHash: session.HashAnswer(q.correct),
			Tags:              []string{},
		}
		if err := repo.Insert(ctx, question); err != nil {
			log.Fatal().Err(err).Str("question_id", question.ID).Msg("failed to seed question")
		}
		seeded++
	}

	log.Info().Int("count", seeded).Msg("questions seeded")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
