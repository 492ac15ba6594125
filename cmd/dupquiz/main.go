// Command dupquiz duplicates a quiz within its course, optionally turning
// the copy into a practice quiz.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ubc-cpsc/canvasgrading/internal/config"
	"github.com/ubc-cpsc/canvasgrading/internal/prompt"
	"github.com/ubc-cpsc/canvasgrading/internal/syncdoc"
	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

func main() {
	var (
		tokenFile = flag.String("f", "", "file containing the Canvas access token")
		token     = flag.String("t", "", "Canvas access token")
		courseID  = flag.Int64("c", 0, "course ID")
		quizID    = flag.Int64("q", 0, "original quiz ID")
		practice  = flag.Bool("practice", false, "change quiz to be a practice quiz")
		published = flag.Bool("published", false, "set the new quiz as published (default: unpublished)")
		debug     = flag.Bool("d", false, "enable debug logging")
	)
	flag.Parse()

	logger := newLogger(*debug)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *token != "" {
		cfg.Token = *token
	}
	if *tokenFile != "" {
		cfg.TokenFile = *tokenFile
	}
	if err := cfg.Resolve(); err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve configuration")
	}

	client, err := canvas.New(canvas.Config{BaseURL: cfg.BaseURL, Token: cfg.Token}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create canvas client")
	}
	term := prompt.New(os.Stdin, os.Stdout)

	fmt.Println("Reading data from Canvas...")
	course, err := term.SelectCourse(ctx, client, *courseID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to select course")
	}
	fmt.Printf("Using course: %s\n", course.Label())

	quiz, err := term.SelectQuiz(ctx, course, *quizID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to select quiz")
	}
	fmt.Printf("Using quiz: %s\n", canvas.String(quiz.Field("title")))

	fmt.Println("Retrieving quiz questions...")
	questions, groups, err := quiz.Questions(ctx, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to retrieve questions")
	}

	clone, err := syncdoc.Clone(ctx, course, quiz, questions, groups, syncdoc.CloneOptions{
		Practice:  *practice,
		Published: *published,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to duplicate quiz")
	}

	fmt.Println("\nDONE. New quiz:")
	fmt.Printf("\tTitle: %s\n", canvas.String(clone.Field("title")))
	fmt.Printf("\tURL  : %s\n", canvas.String(clone.Field("html_url")))
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
