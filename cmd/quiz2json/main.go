// Command quiz2json exports a Canvas quiz, its question groups, and its
// questions into a sync document.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/ubc-cpsc/canvasgrading/internal/config"
	"github.com/ubc-cpsc/canvasgrading/internal/prompt"
	"github.com/ubc-cpsc/canvasgrading/internal/syncdoc"
	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

var unsafeTitleChars = regexp.MustCompile(`[^A-Za-z0-9-_]+`)

func main() {
	var (
		tokenFile = flag.String("f", "", "file containing the Canvas access token")
		token     = flag.String("t", "", "Canvas access token")
		courseID  = flag.Int64("c", 0, "course ID")
		quizID    = flag.Int64("q", 0, "quiz ID")
		output    = flag.String("o", "", "output file (default: derived from the quiz title)")
		strip     = flag.Bool("s", false, "strip values that cannot be pushed back in updates")
		alternate = flag.Bool("a", false, "use the alternative answers format where supported")
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

	if *output == "" {
		*output = unsafeTitleChars.ReplaceAllString(canvas.String(quiz.Field("title")), "") + ".json"
		fmt.Printf("Output file: %s\n", *output)
	}

	fmt.Println("Retrieving quiz questions...")
	questions, groups, err := quiz.Questions(ctx, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to retrieve questions")
	}

	doc := syncdoc.FromCanvas(quiz, questions, groups)
	if *strip {
		doc.Strip()
	}
	if *alternate {
		for _, entry := range doc.Questions {
			syncdoc.ToAlternate(entry.Data)
		}
	}

	fmt.Println("Generating JSON file...")
	file, err := os.Create(*output)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create output file")
	}
	defer file.Close()
	if err := doc.Save(file); err != nil {
		logger.Fatal().Err(err).Msg("failed to save sync document")
	}

	fmt.Println("\nDONE.")
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
