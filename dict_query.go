//
// Copyright (C) 2025 The Vibedict Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package vibedict

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// maxSuggestions caps every suggestion/search result list.
const maxSuggestions = 50

// Lookup returns every definition whose key matches word, either raw or
// under normalizeForCompare. Within each record block raw matches come
// first; blocks are visited in file order and decoded once. A missing word
// yields an empty slice, not an error. For resource archives the single
// matching body is returned as uppercase hex.
func (d *Dict) Lookup(word string) ([]string, error) {
	word = strings.TrimSpace(word)

	if d.fileType == DictTypeMdd {
		val, err := d.Locate(word, ResourceEncodingHex)
		if err != nil {
			if errors.Is(err, ErrWordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return []string{val}, nil
	}

	if d.cache != nil {
		if defs, ok := d.cache.Get(context.Background(), word); ok {
			log.Debugf("Lookup cache hit for '%s' (%d definitions)", word, len(defs))
			return defs, nil
		}
	}

	stripped := normalizeForCompare(word)

	// Group matching keys by record block so each block is decoded once.
	var rids []int
	ridSeen := make(map[int]struct{})
	for _, entry := range d.keyBlockData.keyEntries {
		if entry.KeyWord != word && normalizeForCompare(entry.KeyWord) != stripped {
			continue
		}
		rid := d.reduceRecordBlockOffset(entry.RecordStartOffset)
		if rid < 0 {
			log.Warningf("No record block contains offset %d for key '%s'", entry.RecordStartOffset, entry.KeyWord)
			continue
		}
		if _, ok := ridSeen[rid]; !ok {
			ridSeen[rid] = struct{}{}
			rids = append(rids, rid)
		}
	}
	if len(rids) == 0 {
		return nil, nil
	}
	sort.Ints(rids)

	var results []string
	for _, rid := range rids {
		pairs, err := d.decodeRecordBlockByID(rid)
		if err != nil {
			return nil, fmt.Errorf("lookup of '%s': %w", word, err)
		}
		results = append(results, reducePartialKeys(pairs, word)...)
	}

	if d.cache != nil {
		d.cache.Set(context.Background(), word, results)
	}
	return results, nil
}

// reducePartialKeys collects the definitions for word from one decoded
// record block: raw key matches first, then normalized matches that were not
// already emitted.
func reducePartialKeys(pairs []recordPair, word string) []string {
	stripped := normalizeForCompare(word)

	var definitions []string
	taken := make(map[int]struct{})

	for i, p := range pairs {
		if p.keyWord == word {
			definitions = append(definitions, string(stripTrailingNulls(p.data)))
			taken[i] = struct{}{}
		}
	}
	for i, p := range pairs {
		if _, ok := taken[i]; ok {
			continue
		}
		if normalizeForCompare(p.keyWord) == stripped {
			definitions = append(definitions, string(stripTrailingNulls(p.data)))
		}
	}
	return definitions
}

// GetMatchCount counts the keys exactly equal to word. Equal keys sit next
// to each other in the file's native order, so a binary search followed by a
// forward walk covers them all.
func (d *Dict) GetMatchCount(word string) int {
	entries := d.keyBlockData.keyEntries
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].KeyWord >= word
	})

	count := 0
	for ; i < len(entries) && entries[i].KeyWord == word; i++ {
		count++
	}
	return count
}

// Suggest returns up to 50 keys whose lowercased form starts with the
// lowercased prefix, in file order. An empty prefix yields nothing.
func (d *Dict) Suggest(prefix string) []string {
	if prefix == "" {
		return nil
	}
	lowerPrefix := strings.ToLower(prefix)

	entries := d.keyBlockData.keyEntries
	i := sort.Search(len(entries), func(i int) bool {
		return strings.ToLower(entries[i].KeyWord) >= lowerPrefix
	})

	var suggestions []string
	for ; i < len(entries); i++ {
		lowerKey := strings.ToLower(entries[i].KeyWord)
		if strings.HasPrefix(lowerKey, lowerPrefix) {
			suggestions = append(suggestions, entries[i].KeyWord)
			if len(suggestions) >= maxSuggestions {
				break
			}
			continue
		}
		if lowerKey > lowerPrefix {
			break
		}
	}
	return suggestions
}

var regexMetaChars = "^$.*+?()[]{}|\\"

// regexLiteralPrefix extracts the literal run following a leading ^ anchor.
func regexLiteralPrefix(pattern string) (string, bool) {
	if pattern == "" || pattern[0] != '^' {
		return "", false
	}
	var sb strings.Builder
	for i := 1; i < len(pattern); i++ {
		if strings.IndexByte(regexMetaChars, pattern[i]) >= 0 {
			break
		}
		sb.WriteByte(pattern[i])
	}
	return sb.String(), true
}

// regexLongestLiteral extracts the longest run of literal bytes anywhere in
// the pattern, used as a cheap substring prefilter.
func regexLongestLiteral(pattern string) string {
	var current strings.Builder
	longestStr := ""
	for i := 0; i < len(pattern); i++ {
		if strings.IndexByte(regexMetaChars, pattern[i]) >= 0 {
			if current.Len() > len(longestStr) {
				longestStr = current.String()
			}
			current.Reset()
			continue
		}
		current.WriteByte(pattern[i])
	}
	if current.Len() > len(longestStr) {
		longestStr = current.String()
	}
	return longestStr
}

// RegexSuggest returns up to 50 keys matched by the case-insensitive
// pattern. A ^literal anchor turns into a binary-search start point with an
// early break, and the longest literal run anywhere in the pattern gates
// candidates before the regex engine runs. At most MaxRegexScan candidates
// are examined.
func (d *Dict) RegexSuggest(pattern string) []string {
	if pattern == "" {
		return nil
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		log.Errorf("Invalid regex pattern '%s': %v", pattern, err)
		return nil
	}

	startPrefix, anchored := regexLiteralPrefix(pattern)
	startPrefixLower := strings.ToLower(startPrefix)
	requiredLower := strings.ToLower(regexLongestLiteral(pattern))

	maxScan := d.MaxRegexScan
	if maxScan <= 0 {
		maxScan = defaultMaxRegexScan
	}

	entries := d.keyBlockData.keyEntries
	i := 0
	if anchored && startPrefixLower != "" {
		i = sort.Search(len(entries), func(i int) bool {
			return strings.ToLower(entries[i].KeyWord) >= startPrefixLower
		})
	}

	var suggestions []string
	checked := 0
	for ; i < len(entries); i++ {
		key := entries[i].KeyWord
		lowerKey := strings.ToLower(key)

		if anchored && startPrefixLower != "" && !strings.HasPrefix(lowerKey, startPrefixLower) {
			if lowerKey > startPrefixLower {
				break
			}
			continue
		}

		if requiredLower != "" && !strings.Contains(lowerKey, requiredLower) {
			continue
		}

		if re.MatchString(key) {
			suggestions = append(suggestions, key)
			if len(suggestions) >= maxSuggestions {
				break
			}
		}
		checked++
		if checked >= maxScan {
			break
		}
	}

	log.Debugf("RegexSuggest '%s': examined %d candidates, found %d", pattern, checked, len(suggestions))
	return suggestions
}

// FulltextSearch scans every record block in order and returns up to 50 keys
// whose value contains the query case-insensitively. A failing block is
// logged and skipped. progress, when non-nil, is called every 5 blocks with
// the fraction of blocks processed.
func (d *Dict) FulltextSearch(query string, progress func(float64)) []string {
	lowerQuery := strings.ToLower(query)

	total := len(d.recordBlockInfo.recordInfoList)
	var hits []string

	for rid := 0; rid < total; rid++ {
		if progress != nil && rid%5 == 0 {
			progress(float64(rid) / float64(total))
		}

		pairs, err := d.decodeRecordBlockByID(rid)
		if err != nil {
			log.Errorf("FulltextSearch: error decoding record block %d: %v. Skipping.", rid, err)
			continue
		}

		for _, p := range pairs {
			value := strings.ToLower(string(stripTrailingNulls(p.data)))
			if strings.Contains(value, lowerQuery) {
				hits = append(hits, p.keyWord)
				if len(hits) >= maxSuggestions {
					return hits
				}
			}
		}
	}
	return hits
}

// locateResourceBytes finds one resource body by its normalized path.
func (d *Dict) locateResourceBytes(resourceName string) ([]byte, error) {
	name := resourceName
	if d.fileType == DictTypeMdd {
		name = normalizeResourcePath(resourceName)
	}

	entries := d.keyBlockData.keyEntries
	var found *KeywordEntry
	for _, entry := range entries {
		if entry.KeyWord == name || strings.EqualFold(entry.KeyWord, name) {
			found = entry
			break
		}
	}
	if found == nil {
		return nil, ErrWordNotFound
	}

	rid := d.reduceRecordBlockOffset(found.RecordStartOffset)
	if rid < 0 {
		return nil, fmt.Errorf("no record block contains offset %d for '%s'", found.RecordStartOffset, name)
	}
	pairs, err := d.decodeRecordBlockByID(rid)
	if err != nil {
		return nil, err
	}

	for _, p := range pairs {
		if p.keyWord == found.KeyWord {
			return stripTrailingNulls(p.data), nil
		}
	}
	return nil, ErrWordNotFound
}

// Locate returns one resource body by name, normalized per the archive's
// path rules, encoded as uppercase hex or base64.
func (d *Dict) Locate(resourceName string, encoding ResourceEncoding) (string, error) {
	data, err := d.locateResourceBytes(resourceName)
	if err != nil {
		return "", err
	}
	if encoding == ResourceEncodingBase64 {
		return base64.StdEncoding.EncodeToString(data), nil
	}
	return bytesToHexUpper(data), nil
}
