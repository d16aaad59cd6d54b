// Command corpus is the toolkit's CLI surface: build and query the
// positional inverted index and the FM-index from the command line.
//
// ═══════════════════════════════════════════════════════════════════════════════
// SUBCOMMANDS
// ═══════════════════════════════════════════════════════════════════════════════
//
//	corpus build-inv <corpus> <out>           build+serialize the inverted index
//	corpus build-fm  <text> <out> <sa_sample> build+serialize the FM-index
//	corpus query-inv [-rank] <index> <query> <k>  postings/phrase lookup, or BM25 top-k
//	corpus substr    <fm> <pattern> <max>     backward search + locate
//
// Exit code 0 on success, non-zero on any error (fmt.Fprintf to stderr,
// then os.Exit(1)).
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/wizenheimer/strata/analyze"
	"github.com/wizenheimer/strata/bm25"
	"github.com/wizenheimer/strata/bwt"
	"github.com/wizenheimer/strata/corpusio"
	"github.com/wizenheimer/strata/fmindex"
	"github.com/wizenheimer/strata/invindex"
	"github.com/wizenheimer/strata/phrase"
	"github.com/wizenheimer/strata/sa"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build-inv":
		err = runBuildInv(os.Args[2:])
	case "build-fm":
		err = runBuildFM(os.Args[2:])
	case "query-inv":
		err = runQueryInv(os.Args[2:])
	case "substr":
		err = runSubstr(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "corpus: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: corpus <build-inv|build-fm|query-inv|substr> ...")
}

// ═══════════════════════════════════════════════════════════════════════════════
// build-inv <corpus> <out>
// ═══════════════════════════════════════════════════════════════════════════════

func runBuildInv(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: build-inv <corpus> <out>")
	}
	corpusPath, outPath := args[0], args[1]

	f, err := os.Open(corpusPath)
	if err != nil {
		return err
	}
	defer f.Close()

	b := invindex.NewBuilder()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	var docID invindex.DocID
	var numDocs int
	for scanner.Scan() {
		line := scanner.Text()
		tokens := analyze.Analyze(line)
		for pos, tok := range tokens {
			b.AddDoc(docID, tok, uint32(pos))
		}
		docID++
		numDocs++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	reader := b.Finalize()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	header := corpusio.DictHeader{BuildID: corpusio.NewBuildID(), NumDocs: uint32(reader.NumDocs())}
	if err := corpusio.SaveDict(out, reader.Dict(), header); err != nil {
		return err
	}

	info, _ := os.Stat(outPath)
	var size int64
	if info != nil {
		size = info.Size()
	}
	fmt.Printf("indexed %d documents, %d terms -> %s (%s)\n",
		numDocs, len(reader.Dict()), outPath, humanize.Bytes(uint64(size)))
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// build-fm <text> <out> <sa_sample>
// ═══════════════════════════════════════════════════════════════════════════════

const sentinel = '$'

func runBuildFM(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: build-fm <text> <out> <sa_sample>")
	}
	textPath, outPath, sampleArg := args[0], args[1], args[2]

	saSample, err := strconv.Atoi(sampleArg)
	if err != nil || saSample < 1 {
		return fmt.Errorf("sa_sample must be a positive integer")
	}

	raw, err := os.ReadFile(textPath)
	if err != nil {
		return err
	}
	text := raw
	if len(text) == 0 || text[len(text)-1] != sentinel {
		text = append(text, sentinel)
	}

	suffixArray := sa.Build(text)
	_ = sa.LCP(text, suffixArray) // computed and discarded, not persisted
	bwtBytes, _ := bwt.FromSuffixArray(text, suffixArray)

	idx, err := fmindex.Build(text, suffixArray, bwtBytes, saSample)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := idx.Save(out); err != nil {
		return err
	}

	info, _ := os.Stat(outPath)
	var size int64
	if info != nil {
		size = info.Size()
	}
	fmt.Printf("built FM-index over %s bytes (k=%d) -> %s (%s)\n",
		humanize.Comma(int64(idx.N())), saSample, outPath, humanize.Bytes(uint64(size)))
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// query-inv [-rank] <index> <query> <k>
// ═══════════════════════════════════════════════════════════════════════════════

// queryCacheSize bounds the LRU of decoded posting lists a single query-inv
// invocation keeps; the phrase matcher, the single-term lookup and the
// ranker read postings through it, so a term repeated within one query is
// decoded once.
const queryCacheSize = 256

func runQueryInv(args []string) error {
	fs := flag.NewFlagSet("query-inv", flag.ContinueOnError)
	rank := fs.Bool("rank", false, "rank results by BM25 instead of raw postings/phrase lookup")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 3 {
		return fmt.Errorf("usage: query-inv [-rank] <index> <query> <k>")
	}
	indexPath, query, kArg := rest[0], rest[1], rest[2]

	k, err := strconv.Atoi(kArg)
	if err != nil || k < 0 {
		return fmt.Errorf("k must be a non-negative integer")
	}

	// The query must pass through the same analysis pipeline the index was
	// built with: a stemmed, stopword-filtered dictionary never matches raw
	// query words.
	terms := analyze.Analyze(query)
	if len(terms) == 0 {
		return fmt.Errorf("empty query")
	}

	mapped, err := corpusio.OpenMapped(indexPath)
	if err != nil {
		return err
	}
	defer mapped.Close()

	dict, header, err := corpusio.LoadDict(bytes.NewReader(mapped.Bytes()))
	if err != nil {
		return err
	}
	reader := invindex.NewReader(dict, header.NumDocs)
	cached := invindex.NewCachedReader(reader, queryCacheSize)

	if *rank {
		return runRankedQuery(reader, cached, terms, k)
	}
	if len(terms) > 1 {
		return runPhraseQuery(cached, terms, k)
	}
	return runPostingsQuery(cached, terms[0], k)
}

func runPostingsQuery(src *invindex.CachedReader, term string, k int) error {
	postings, err := src.Postings(term)
	if err != nil {
		return err
	}
	for i, p := range postings {
		if i >= k {
			break
		}
		fmt.Println(p.DocID)
	}
	return nil
}

func runPhraseQuery(src *invindex.CachedReader, terms []string, k int) error {
	matches, err := phrase.Query(src, terms)
	if err != nil {
		return err
	}
	seen := make(map[invindex.DocID]bool)
	var docIDs []invindex.DocID
	for _, m := range matches {
		if !seen[m.DocID] {
			seen[m.DocID] = true
			docIDs = append(docIDs, m.DocID)
		}
	}
	sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })
	for i, d := range docIDs {
		if i >= k {
			break
		}
		fmt.Println(d)
	}
	return nil
}

func runRankedQuery(reader *invindex.Reader, cached *invindex.CachedReader, terms []string, k int) error {
	docLens, err := reader.DocLens()
	if err != nil {
		return err
	}
	params := bm25.DefaultParams()
	lens := make(map[uint32]uint32, len(docLens))
	for d, l := range docLens {
		lens[uint32(d)] = l
	}
	params.AvgDL = bm25.ComputeAvgDL(lens)

	src := bm25.FromInvIndex(cached)
	ranked, err := bm25.Query(src, terms, params, k)
	if err != nil {
		return err
	}
	for _, r := range ranked {
		fmt.Printf("%d\t%.4f\n", r.DocID, r.Score)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// substr <fm> <pattern> <max>
// ═══════════════════════════════════════════════════════════════════════════════

func runSubstr(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: substr <fm> <pattern> <max>")
	}
	fmPath, pattern, maxArg := args[0], args[1], args[2]

	max, err := strconv.Atoi(maxArg)
	if err != nil || max < 0 {
		return fmt.Errorf("max must be a non-negative integer")
	}
	if pattern == "" {
		return fmt.Errorf("empty pattern")
	}

	mapped, err := corpusio.OpenMapped(fmPath)
	if err != nil {
		return err
	}
	defer mapped.Close()

	idx, err := fmindex.Load(bytes.NewReader(mapped.Bytes()))
	if err != nil {
		return err
	}

	rng, ok := idx.BackwardSearch([]byte(pattern))
	if !ok {
		fmt.Println("no matches")
		return nil
	}

	positions := idx.LocateRange(rng, max)
	sort.Ints(positions)
	for _, p := range positions {
		fmt.Println(p)
	}
	return nil
}
