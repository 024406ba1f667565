// Package semantic implements the core's deterministic,
// replaceable embedding and ranking primitives (§4.5.3's "Semantic
// search" and "Hybrid search"): a fixed small-vocabulary word-vector
// table expanded to 384 dimensions, cosine similarity, and reciprocal
// rank fusion. It has no external model dependency by design — the
// spec calls it "a deterministic reference implementation meant to be
// replaceable" (Non-goals, §1).
package semantic

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Dimensions is the expanded embedding width every vector here uses.
const Dimensions = 384

const wordVectorDims = 4

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lower-cases text and extracts ASCII word tokens, discarding
// punctuation, per §4.5.3 step 1.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// wordVectors is the fixed closed-vocabulary table of 4-dimensional
// semantic vectors, spanning the domains named by §4.5.3 step 2: AI/ML,
// programming, database, devops, food, commerce, security.
var wordVectors = map[string][wordVectorDims]float64{
	// AI/ML
	"ai":          {0.90, 0.10, 0.05, 0.00},
	"machine":     {0.85, 0.15, 0.10, 0.05},
	"learning":    {0.88, 0.12, 0.08, 0.02},
	"model":       {0.80, 0.20, 0.10, 0.05},
	"neural":      {0.92, 0.08, 0.04, 0.00},
	"network":     {0.70, 0.30, 0.20, 0.10},
	"embedding":   {0.87, 0.13, 0.09, 0.03},
	"vector":      {0.75, 0.25, 0.15, 0.05},
	"training":    {0.82, 0.18, 0.11, 0.04},

	// Programming
	"code":       {0.10, 0.90, 0.05, 0.05},
	"function":   {0.12, 0.88, 0.07, 0.03},
	"typescript": {0.08, 0.92, 0.06, 0.02},
	"javascript": {0.09, 0.91, 0.06, 0.02},
	"go":         {0.07, 0.93, 0.05, 0.01},
	"programming": {0.10, 0.90, 0.08, 0.02},
	"guide":      {0.15, 0.70, 0.10, 0.05},
	"compiler":   {0.11, 0.89, 0.07, 0.03},
	"api":        {0.14, 0.82, 0.12, 0.06},

	// Database
	"database": {0.05, 0.10, 0.90, 0.05},
	"query":    {0.06, 0.12, 0.88, 0.04},
	"schema":   {0.07, 0.09, 0.89, 0.03},
	"sql":      {0.05, 0.11, 0.91, 0.02},
	"table":    {0.08, 0.13, 0.85, 0.06},
	"index":    {0.09, 0.14, 0.83, 0.07},
	"relation": {0.10, 0.15, 0.84, 0.08},

	// Devops
	"deploy":    {0.05, 0.20, 0.10, 0.90},
	"pipeline":  {0.06, 0.22, 0.09, 0.88},
	"container": {0.07, 0.18, 0.11, 0.89},
	"cluster":   {0.08, 0.19, 0.12, 0.87},
	"monitor":   {0.04, 0.17, 0.08, 0.91},
	"infra":     {0.05, 0.15, 0.10, 0.92},

	// Food
	"food":      {0.02, 0.02, 0.02, 0.02},
	"cooking":   {0.03, 0.01, 0.01, 0.03},
	"italian":   {0.02, 0.01, 0.02, 0.01},
	"pasta":     {0.04, 0.02, 0.01, 0.02},
	"restaurant": {0.03, 0.02, 0.02, 0.01},
	"recipe":    {0.05, 0.03, 0.02, 0.02},
	"kitchen":   {0.04, 0.02, 0.03, 0.02},

	// Commerce
	"order":    {0.20, 0.20, 0.20, 0.20},
	"price":    {0.22, 0.18, 0.19, 0.21},
	"customer": {0.21, 0.19, 0.20, 0.20},
	"invoice":  {0.23, 0.17, 0.18, 0.22},
	"cart":     {0.24, 0.16, 0.17, 0.23},
	"payment":  {0.25, 0.15, 0.16, 0.24},

	// Security
	"security": {0.50, 0.05, 0.05, 0.40},
	"auth":     {0.48, 0.06, 0.06, 0.40},
	"token":    {0.45, 0.08, 0.07, 0.40},
	"encrypt":  {0.52, 0.04, 0.04, 0.40},
	"firewall": {0.47, 0.07, 0.06, 0.40},
	"breach":   {0.55, 0.03, 0.03, 0.39},
}

// defaultVector is the base vector used for unknown words, perturbed
// deterministically per word below.
var defaultVector = [wordVectorDims]float64{0.25, 0.25, 0.25, 0.25}

// seededHash derives a deterministic pseudo-random float in [-1, 1]
// from a seed string, using FNV-1a rather than time/Math.random so two
// calls with the same input always agree.
func seededHash(seed string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	v := h.Sum64()
	// Map the top 53 bits onto [0, 1), then shift to [-1, 1).
	frac := float64(v>>11) / float64(1<<53)
	return frac*2 - 1
}

func vectorFor(word string) [wordVectorDims]float64 {
	if v, ok := wordVectors[word]; ok {
		return v
	}
	v := defaultVector
	for i := range v {
		v[i] += 0.05 * seededHash(word+":"+string(rune('a'+i)))
	}
	return v
}

// Embed produces a deterministic 384-dimensional embedding for text
// per §4.5.3 steps 1-4: tokenize, sum per-word 4-vectors, L2-normalize,
// expand to 384 dims by mapping index i to normalized[i%4] plus a
// seeded noise term, then L2-normalize again.
func Embed(text string) []float64 {
	words := Tokenize(text)

	var sum [wordVectorDims]float64
	if len(words) == 0 {
		sum = defaultVector
	} else {
		for _, w := range words {
			wv := vectorFor(w)
			for i := range sum {
				sum[i] += wv[i]
			}
		}
	}
	normalized := normalizeSmall(sum)

	expanded := make([]float64, Dimensions)
	for i := 0; i < Dimensions; i++ {
		noise := 0.01 * seededHash(text+"#"+itoa(i))
		expanded[i] = normalized[i%wordVectorDims] + noise
	}
	return l2Normalize(expanded)
}

func normalizeSmall(v [wordVectorDims]float64) [wordVectorDims]float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	var out [wordVectorDims]float64
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func l2Normalize(v []float64) []float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// CosineSimilarity computes cosine similarity between two equal-length
// vectors, mapped from [-1, 1] to [0, 1] and clamped, per §4.5.3.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	score := (cos + 1) / 2
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
