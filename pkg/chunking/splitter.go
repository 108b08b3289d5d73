package chunking

// Chunk is a bounded, possibly overlapping piece of a longer document.
// Offsets are rune offsets into the original text; consecutive chunks
// may overlap but never start at the same offset.
type Chunk struct {
	Text  string `json:"text"`
	Start int    `json:"start"` // inclusive
	End   int    `json:"end"`   // exclusive
	Index int    `json:"index"` // 0-based position among sibling chunks
	Total int    `json:"total"` // sibling count
}

// Split breaks text into ordered chunks of at most chunkSize runes with
// the requested overlap, using sentence or character mode. Text no
// longer than chunkSize comes back as a single chunk.
func Split(text string, chunkSize, overlap int, mode string) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = baseChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0 // fallback if overlap is unusable
	}
	if len(runes) <= chunkSize {
		return finalize(runes, []Chunk{{Start: 0, End: len(runes)}})
	}

	var chunks []Chunk
	if mode == ModeCharacter {
		chunks = splitCharacterMode(runes, chunkSize, overlap)
	} else {
		chunks = splitSentenceMode(runes, chunkSize, overlap)
	}
	return finalize(runes, chunks)
}

// SplitForType chunks text using the policy registered for docType.
func SplitForType(text, docType string) []Chunk {
	p := PolicyFor(docType)
	return Split(text, p.ChunkSize, p.Overlap, p.Mode)
}

// splitSentenceMode accumulates whole sentences into a chunk until the
// next sentence would overflow, then starts a new chunk seeded with an
// overlap tail truncated to the nearest preceding sentence boundary.
func splitSentenceMode(runes []rune, chunkSize, overlap int) []Chunk {
	spans := sentenceSpans(runes)
	var chunks []Chunk
	lastStart := -1
	curStart, curEnd := 0, 0

	emit := func(start, end int) {
		chunks = append(chunks, Chunk{Start: start, End: end})
		lastStart = start
	}

	for _, sp := range spans {
		sentLen := sp[1] - sp[0]

		if sentLen > chunkSize {
			// A single sentence longer than the chunk size gets
			// hard-sliced so no chunk ever exceeds the limit.
			if curEnd > curStart {
				emit(curStart, curEnd)
			}
			for p := sp[0]; p < sp[1]; p += chunkSize {
				e := p + chunkSize
				if e > sp[1] {
					e = sp[1]
				}
				emit(p, e)
			}
			curStart, curEnd = sp[1], sp[1]
			continue
		}

		if curEnd > curStart && (curEnd-curStart)+sentLen > chunkSize {
			emit(curStart, curEnd)

			// Seed the next chunk with the tail of the previous one,
			// snapped forward to a sentence start within the overlap.
			// The seed is kept only while the incoming sentence still
			// fits beside it, so no chunk exceeds chunkSize.
			next := curEnd
			for _, prev := range spans {
				if prev[0] >= curEnd-overlap && prev[0] < curEnd && sp[1]-prev[0] <= chunkSize {
					next = prev[0]
					break
				}
			}
			if next <= lastStart {
				next = curEnd // never reuse a start offset
			}
			curStart = next
		}
		curEnd = sp[1]
	}
	if curEnd > curStart {
		emit(curStart, curEnd)
	}
	return chunks
}

// splitCharacterMode slides a fixed window with overlap, snapping the
// right edge backward to the nearest sentence or paragraph boundary
// found within 30% of the window.
func splitCharacterMode(runes []rune, chunkSize, overlap int) []Chunk {
	n := len(runes)
	backScan := chunkSize * 3 / 10
	var chunks []Chunk

	pos := 0
	for pos < n {
		end := pos + chunkSize
		if end >= n {
			chunks = append(chunks, Chunk{Start: pos, End: n})
			break
		}
		for i := end - 1; i > end-backScan && i > pos; i-- {
			if isSentenceBoundary(runes[i]) {
				end = i + 1
				break
			}
		}
		chunks = append(chunks, Chunk{Start: pos, End: end})

		next := end - overlap
		if next <= pos {
			next = end
		}
		pos = next
	}
	return chunks
}

// sentenceSpans returns contiguous [start,end) rune spans, one per
// sentence, with trailing boundary runes attached to their sentence.
func sentenceSpans(runes []rune) [][2]int {
	var spans [][2]int
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceBoundary(runes[i]) {
			continue
		}
		j := i
		for j+1 < len(runes) && isSentenceBoundary(runes[j+1]) {
			j++
		}
		spans = append(spans, [2]int{start, j + 1})
		start = j + 1
		i = j
	}
	if start < len(runes) {
		spans = append(spans, [2]int{start, len(runes)})
	}
	return spans
}

func isSentenceBoundary(r rune) bool {
	switch r {
	case '。', '！', '？', '；', '.', '!', '?', ';', '\n':
		return true
	}
	return false
}

func finalize(runes []rune, chunks []Chunk) []Chunk {
	for i := range chunks {
		chunks[i].Text = string(runes[chunks[i].Start:chunks[i].End])
		chunks[i].Index = i
		chunks[i].Total = len(chunks)
	}
	return chunks
}
