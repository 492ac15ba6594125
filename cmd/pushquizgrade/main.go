// Command pushquizgrade pushes per-question grades and comments from a CSV
// grade sheet onto the matching quiz submissions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ubc-cpsc/canvasgrading/internal/config"
	"github.com/ubc-cpsc/canvasgrading/internal/grades"
	"github.com/ubc-cpsc/canvasgrading/internal/prompt"
	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

func main() {
	var (
		tokenFile = flag.String("f", "", "file containing the Canvas access token")
		token     = flag.String("t", "", "Canvas access token")
		courseID  = flag.Int64("c", 0, "course ID")
		quizID    = flag.Int64("q", 0, "quiz ID")
		debug     = flag.Bool("d", false, "enable debug logging")
	)
	flag.Parse()

	logger := newLogger(*debug)
	ctx := context.Background()

	if flag.NArg() != 1 {
		logger.Fatal().Msg("usage: pushquizgrade [flags] <grades-csv>")
	}

	fmt.Println("Loading grades...")
	file, err := os.Open(flag.Arg(0))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open grade sheet")
	}
	rows, err := grades.LoadCSV(file)
	file.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load grade sheet")
	}

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

	if err := grades.Push(ctx, quiz, rows, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to push grades")
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
