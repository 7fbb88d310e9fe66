package eastmoney

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/moyan/superforce/backend/internal/contracts"
)

// Concept board screener fields: board code, name, change pct, advancer
// and decliner counts.
const boardFields = "f3,f12,f14,f104,f105"

const boardMarkets = "m:90+t:3"

const boardPageSize = 100

// Boards whose members get a theme label. Beyond this the boards are
// broad catch-alls with no signal.
const topBoardCount = 20

// Concurrent member-page fetches
const boardFetchWorkers = 4

type boardRow struct {
	ChangePct looseFloat `json:"f3"`
	Code      string     `json:"f12"`
	Name      string     `json:"f14"`
	Advancers looseFloat `json:"f104"`
	Decliners looseFloat `json:"f105"`
}

type boardListResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Total int        `json:"total"`
		Diff  []boardRow `json:"diff"`
	} `json:"data"`
}

// Board is one concept board with its derived hotness
type Board struct {
	Code    string
	Name    string
	Hotness float64
}

// FetchHotBoards pulls the concept board list and derives a hotness
// factor per board: 1.0 for a flat or falling board, rising with the
// board's gain and advancer breadth. Sorted hottest first.
func (c *Client) FetchHotBoards(ctx context.Context) ([]Board, error) {
	params := url.Values{}
	params.Set("pn", "1")
	params.Set("pz", fmt.Sprintf("%d", boardPageSize))
	params.Set("po", "1")
	params.Set("np", "1")
	params.Set("fltt", "2")
	params.Set("fid", "f3")
	params.Set("fs", boardMarkets)
	params.Set("fields", boardFields)

	fullURL := fmt.Sprintf("%s/api/qt/clist/get?%s", c.quoteBaseURL, params.Encode())

	var resp boardListResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("fetch board list: %w", err)
	}
	if resp.RC != 0 || resp.Data == nil {
		return nil, fmt.Errorf("board API returned rc=%d", resp.RC)
	}

	boards := make([]Board, 0, len(resp.Data.Diff))
	for _, row := range resp.Data.Diff {
		if row.Name == "" {
			continue
		}
		boards = append(boards, Board{
			Code:    row.Code,
			Name:    row.Name,
			Hotness: boardHotness(row),
		})
	}

	sort.Slice(boards, func(i, j int) bool {
		if boards[i].Hotness != boards[j].Hotness {
			return boards[i].Hotness > boards[j].Hotness
		}
		return boards[i].Code < boards[j].Code
	})

	return boards, nil
}

// boardHotness maps board gain and breadth into a factor >= 1.0:
// 1% of board gain adds 0.1, full advancer breadth adds up to 0.5.
func boardHotness(row boardRow) float64 {
	change := row.ChangePct.Value()
	if change <= 0 {
		return 1.0
	}

	h := 1.0 + change/10.0

	up := row.Advancers.Value()
	down := row.Decliners.Value()
	if up+down > 0 {
		h += 0.5 * (up / (up + down))
	}

	if h > 3.0 {
		h = 3.0
	}
	return h
}

// FetchThemeProfile builds the per-theme hotness map plus a stock-code
// to theme assignment from the hottest concept boards. A stock on
// several hot boards keeps the hottest one.
func (c *Client) FetchThemeProfile(ctx context.Context) (contracts.ThemeProfile, map[string]string, error) {
	boards, err := c.FetchHotBoards(ctx)
	if err != nil {
		return nil, nil, err
	}

	if len(boards) > topBoardCount {
		boards = boards[:topBoardCount]
	}

	// Member pages are fetched concurrently, but the hottest-board-wins
	// assignment below walks the boards in hotness order so the result
	// stays deterministic.
	memberLists := make([][]string, len(boards))
	var wg sync.WaitGroup
	sem := make(chan struct{}, boardFetchWorkers)
	for i, board := range boards {
		wg.Add(1)
		go func(i int, board Board) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			members, err := c.fetchBoardMembers(ctx, board.Code)
			if err != nil {
				// A single unreadable board page must not sink the profile
				c.logger.WithError(err).WithField("board", board.Name).Warn("Failed to fetch board members")
				return
			}
			memberLists[i] = members
		}(i, board)
	}
	wg.Wait()

	profile := contracts.ThemeProfile{}
	assignment := make(map[string]string)

	for i, board := range boards {
		profile[board.Name] = board.Hotness
		for _, code := range memberLists[i] {
			if _, taken := assignment[code]; !taken {
				assignment[code] = board.Name
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"boards": len(profile),
		"stocks": len(assignment),
	}).Info("Fetched theme profile")

	return profile, assignment, nil
}

// fetchBoardMembers scrapes the stock codes from a board's member page
func (c *Client) fetchBoardMembers(ctx context.Context, boardCode string) ([]string, error) {
	fullURL := fmt.Sprintf("%s/center/boarddetail.html?code=%s", c.boardBaseURL, boardCode)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse board page: %w", err)
	}

	return parseBoardMembers(doc), nil
}

// parseBoardMembers extracts the six-digit stock codes from the member
// table rows.
func parseBoardMembers(doc *goquery.Document) []string {
	var codes []string
	seen := make(map[string]bool)

	doc.Find("table.board-members tbody tr").Each(func(_ int, row *goquery.Selection) {
		code := strings.TrimSpace(row.Find("td.code").First().Text())
		if code == "" {
			// Older page layout keeps the code in the second cell
			code = strings.TrimSpace(row.Find("td").Eq(1).Text())
		}
		if isStockCode(code) && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	})

	return codes
}

func isStockCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
