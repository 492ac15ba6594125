// Command json2quiz synchronizes a quiz with a sync document: it can push
// the document's content onto Canvas, load the current quiz state into the
// document, or both in one run.
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
		quizID    = flag.Int64("q", 0, "quiz ID")
		push      = flag.Bool("p", false, "push JSON values to Canvas")
		load      = flag.Bool("l", false, "load JSON from values retrieved from Canvas")
		strip     = flag.Bool("s", false, "strip from output JSON values that cannot be pushed back in updates")
		alternate = flag.Bool("a", false, "use the alternative answers format where supported")
		debug     = flag.Bool("d", false, "enable debug logging")
	)
	flag.Parse()

	logger := newLogger(*debug)
	ctx := context.Background()

	if flag.NArg() != 1 {
		logger.Fatal().Msg("usage: json2quiz [flags] <json-file>")
	}
	jsonPath := flag.Arg(0)
	if !*push && !*load {
		logger.Fatal().Msg("action missing, must select -p, -l or both")
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

	doc := &syncdoc.Document{}
	if *push {
		fmt.Println("Reading JSON file...")
		file, err := os.Open(jsonPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open JSON file")
		}
		doc, err = syncdoc.Load(file)
		file.Close()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load sync document")
		}
		if *quizID == 0 {
			*quizID = canvas.Int64(doc.Quiz["id"])
		}
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

	fmt.Println("Retrieving current quiz questions...")
	questions, groups, err := quiz.Questions(ctx, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to retrieve questions")
	}

	if *push {
		questions, groups, err = syncdoc.Apply(ctx, quiz, questions, groups, doc, term, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to push sync document")
		}
	}

	if *load {
		out := syncdoc.FromCanvas(quiz, questions, groups)
		if *strip {
			out.Strip()
		}
		if *alternate {
			for _, entry := range out.Questions {
				syncdoc.ToAlternate(entry.Data)
			}
		}

		fmt.Println("Saving values back to JSON file...")
		file, err := os.Create(jsonPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create JSON file")
		}
		defer file.Close()
		if err := out.Save(file); err != nil {
			logger.Fatal().Err(err).Msg("failed to save sync document")
		}
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
