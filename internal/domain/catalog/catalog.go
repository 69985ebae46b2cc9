package catalog

import (
	"codeduel/internal/common"
	"codeduel/internal/domain/model"

	"github.com/gosimple/slug"
)

// Catalog is the immutable problem table, loaded once at startup. Problems
// are numbered sequentially from 1; round advancement walks the ids in order.
type Catalog struct {
	problems map[int]*model.Problem
}

type seed struct {
	title      string
	slug       string // overrides slug.Make(title) when non-empty
	signature  string
	statement  string
	starter    string
	funcName   string
	params     []string
	comparator model.Comparator
	vectors    []model.TestVector
}

func New() *Catalog {
	c := &Catalog{problems: make(map[int]*model.Problem)}
	for i, s := range seeds {
		id := i + 1
		sl := s.slug
		if sl == "" {
			sl = slug.Make(s.title)
		}
		c.problems[id] = &model.Problem{
			ID:          id,
			Slug:        sl,
			Title:       s.title,
			Signature:   s.signature,
			Statement:   s.statement,
			Starter:     s.starter,
			FuncName:    s.funcName,
			Params:      s.params,
			Comparator:  s.comparator,
			TestVectors: s.vectors,
		}
	}
	return c
}

func (c *Catalog) Get(id int) (*model.Problem, error) {
	p, ok := c.problems[id]
	if !ok {
		return nil, common.Errorf("problem %d: %w", id, common.ErrUnknownProblem)
	}
	return p, nil
}

func (c *Catalog) Has(id int) bool {
	_, ok := c.problems[id]
	return ok
}

func (c *Catalog) Count() int {
	return len(c.problems)
}

var seeds = []seed{
	{
		title:     "Two Sum",
		signature: "def two_sum(nums, target) -> list[int]:",
		statement: "Return indices of two numbers such that they add to target.",
		starter:   "def two_sum(nums, target):\n    # return [i, j]\n    pass\n",
		funcName:  "two_sum",
		params:    []string{"nums", "target"},
		// index pairs are accepted in either order
		comparator: model.CompareIndexPair,
		vectors: []model.TestVector{
			{Inputs: map[string]any{"nums": []any{2, 7, 11, 15}, "target": 9}, Expected: []any{0, 1}},
			{Inputs: map[string]any{"nums": []any{3, 2, 4}, "target": 6}, Expected: []any{1, 2}},
			{Inputs: map[string]any{"nums": []any{3, 3}, "target": 6}, Expected: []any{0, 1}},
		},
	},
	{
		title:      "Binary Search",
		signature:  "def binary_search(nums, target) -> int:",
		statement:  "Return index of target in sorted nums, or -1 if not found.",
		starter:    "def binary_search(nums, target):\n    # return index or -1\n    pass\n",
		funcName:   "binary_search",
		params:     []string{"nums", "target"},
		comparator: model.CompareExact,
		vectors: []model.TestVector{
			{Inputs: map[string]any{"nums": []any{-1, 0, 3, 5, 9, 12}, "target": 9}, Expected: 4},
			{Inputs: map[string]any{"nums": []any{-1, 0, 3, 5, 9, 12}, "target": 2}, Expected: -1},
			{Inputs: map[string]any{"nums": []any{1}, "target": 1}, Expected: 0},
		},
	},
	{
		title:      "Trapping Rain Water",
		signature:  "def trap(height) -> int:",
		statement:  "Given elevation map, compute total trapped water.",
		starter:    "def trap(height):\n    # return int\n    pass\n",
		funcName:   "trap",
		params:     []string{"height"},
		comparator: model.CompareExact,
		vectors: []model.TestVector{
			{Inputs: map[string]any{"height": []any{0, 1, 0, 2, 1, 0, 1, 3, 2, 1, 2, 1}}, Expected: 6},
			{Inputs: map[string]any{"height": []any{4, 2, 0, 3, 2, 5}}, Expected: 9},
			{Inputs: map[string]any{"height": []any{1, 2, 3}}, Expected: 0},
		},
	},
	{
		title:     "Valid Palindrome",
		slug:      "palindrome",
		signature: "def is_palindrome(s) -> bool:",
		statement: "Check if string is a palindrome (alphanumeric, case-insensitive).",
		starter:   "def is_palindrome(s):\n    # return True/False\n    pass\n",
		funcName:  "is_palindrome",
		params:    []string{"s"},
		// strict boolean match; returning truthy garbage does not pass
		comparator: model.CompareBoolean,
		vectors: []model.TestVector{
			{Inputs: map[string]any{"s": "A man, a plan, a canal: Panama"}, Expected: true},
			{Inputs: map[string]any{"s": "race a car"}, Expected: false},
			{Inputs: map[string]any{"s": ""}, Expected: true},
		},
	},
	{
		title:      "Valid Parentheses",
		signature:  "def is_valid(s) -> bool:",
		statement:  "Check if brackets ()[]{} are balanced.",
		starter:    "def is_valid(s):\n    # return True/False\n    pass\n",
		funcName:   "is_valid",
		params:     []string{"s"},
		comparator: model.CompareBoolean,
		vectors: []model.TestVector{
			{Inputs: map[string]any{"s": "()"}, Expected: true},
			{Inputs: map[string]any{"s": "()[]{}"}, Expected: true},
			{Inputs: map[string]any{"s": "(]"}, Expected: false},
			{Inputs: map[string]any{"s": "([)]"}, Expected: false},
			{Inputs: map[string]any{"s": "{[]}"}, Expected: true},
		},
	},
}
