package collectors

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"tool-pulse/config"
	"tool-pulse/logger"
	"tool-pulse/models"
	"tool-pulse/parser"
)

const USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

const (
	defaultAnswersURL = "https://www.reddit.com/answers/"

	// The answers page renders the question box and the streamed answer
	// pane with stable test ids.
	questionInputSelector = `textarea[name="q"]`
	answerPaneSelector    = `div[data-testid="answers-response"]`

	// An answer qualifies once the extracted text reaches this many runes.
	// Shorter panes are treated as still streaming or as boilerplate.
	minAnswerRunes = 200

	answerPollInterval = 2 * time.Second
)

// ForumCollector drives an automated interactive session against the
// community forum's Q&A page: navigate, submit a natural-language question,
// wait for a qualifying answer under a bounded timeout, extract raw text.
// Fails closed when no qualifying answer appears; the session itself is
// never retried.
type ForumCollector struct {
	cfg config.SentimentConfig
}

func NewForumCollector(cfg config.SentimentConfig) *ForumCollector {
	return &ForumCollector{cfg: cfg}
}

func (c *ForumCollector) Source() string { return models.SourceForum }

func (c *ForumCollector) Collect(ctx context.Context, subject models.Subject) (*RawSourceData, error) {
	start, end := LookbackWindow(c.cfg.LookbackMonths)
	question := forumQuestion(subject.Query(), c.cfg.LookbackMonths)

	answersURL := c.cfg.Forum.AnswersURL
	if answersURL == "" {
		answersURL = defaultAnswersURL
	}
	timeout := time.Duration(c.cfg.Forum.AnswerTimeoutSec) * time.Second

	chromePath := os.Getenv("CHROME_PATH")
	if chromePath == "" {
		chromePath = "/usr/bin/chromium-browser" // Docker/Linux 기본
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.UserAgent(USER_AGENT),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-crashpad", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	// Navigate and submit the question. A missing input box means the page
	// layout changed or the session was blocked; both fail the collection.
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(answersURL),
		chromedp.WaitVisible(questionInputSelector, chromedp.ByQuery),
		chromedp.SendKeys(questionInputSelector, question, chromedp.ByQuery),
		chromedp.SendKeys(questionInputSelector, kb.Enter, chromedp.ByQuery),
	)
	if err != nil {
		if browserCtx.Err() != nil {
			return nil, &CollectionError{Source: c.Source(), Reason: "question input not found before timeout", Err: err}
		}
		return nil, &CollectionError{Source: c.Source(), Reason: "failed to submit question", Err: err}
	}

	answer, err := c.waitForAnswer(browserCtx)
	if err != nil {
		return nil, err
	}

	logger.InfoWithFields("forum answer collected", logger.Fields{
		"subject": subject.Slug,
		"runes":   len([]rune(answer)),
	})

	meta := baseMeta(start, end)
	meta["question"] = question
	meta["page_url"] = answersURL

	return &RawSourceData{
		Source:    c.Source(),
		SubjectID: subject.ID,
		Texts:     []string{answer},
		Meta:      meta,
	}, nil
}

// waitForAnswer polls the answer pane until its extracted text qualifies or
// the session deadline passes.
func (c *ForumCollector) waitForAnswer(ctx context.Context) (string, error) {
	ticker := time.NewTicker(answerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", &CollectionError{Source: c.Source(), Reason: "no qualifying answer within timeout", Err: ctx.Err()}
		case <-ticker.C:
		}

		var paneHTML string
		err := chromedp.Run(ctx,
			chromedp.OuterHTML(answerPaneSelector, &paneHTML, chromedp.ByQuery, chromedp.AtLeast(0)),
		)
		if err != nil {
			if ctx.Err() != nil {
				return "", &CollectionError{Source: c.Source(), Reason: "no qualifying answer within timeout", Err: ctx.Err()}
			}
			return "", &CollectionError{Source: c.Source(), Reason: "failed to read answer pane", Err: err}
		}
		if paneHTML == "" {
			continue
		}

		text := parser.ExtractText(paneHTML)
		if text == "" {
			text = parser.VisibleText(paneHTML)
		}
		if answerQualifies(text) {
			return text, nil
		}
	}
}

// answerQualifies reports whether extracted pane text is a usable answer
// rather than a placeholder or a still-streaming stub.
func answerQualifies(text string) bool {
	return len([]rune(text)) >= minAnswerRunes
}

func forumQuestion(query string, lookbackMonths int) string {
	return fmt.Sprintf(
		"What do people think about %s? Summarize the community's opinion from the last %d months: "+
			"what users praise, what they complain about, and which features come up most often.",
		query, lookbackMonths,
	)
}
