/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package wire

import (
	"reflect"
	"strings"
	"testing"
)

func u64(v uint64) *uint64 { return &v }
func str(v string) *string { return &v }

func TestRequestRoundTrip(t *testing.T) {
	cases := []Request{
		KeyRequest{Login: "alice"},
		PamRequest{Login: "bob"},
		CleanupRequest{},
		RateLimitRequest{},
		SectorsRequest{},
		ContinuationRequest{},
		PwRequest{ByUID: u64(1001)},
		PwRequest{ByName: str("alice")},
		PwRequest{Entry: &EntryKey{Op: EntrySet, PID: 42}},
		PwRequest{Entry: &EntryKey{Op: EntryGet, PID: 42}},
		PwRequest{Entry: &EntryKey{Op: EntryEnd, PID: 42}},
		SpRequest{ByName: str("alice")},
		SpRequest{Entry: &EntryKey{Op: EntrySet, PID: 7}},
		GrRequest{ByGID: u64(500)},
		GrRequest{ByName: str("teamA")},
		GrRequest{Entry: &EntryKey{Op: EntryGet, PID: 7}},
	}

	for _, want := range cases {
		encoded, err := EncodeRequest(want)
		if err != nil {
			t.Fatalf("encode %#v: %v", want, err)
		}
		if !strings.HasPrefix(encoded, "c:") {
			t.Fatalf("encoded request missing c: prefix: %q", encoded)
		}
		got, err := ParseRequest(strings.TrimPrefix(encoded, "c:"))
		if err != nil {
			t.Fatalf("parse %q: %v", encoded, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip mismatch: want %#v got %#v (frame %q)", want, got, encoded)
		}
	}
}

func TestReplyRoundTrip(t *testing.T) {
	gid := uint64(500)
	group := "teamA"

	cases := []Reply{
		SuccessReply{},
		ErrorReply{Msg: "boom"},
		KeyReply{Keys: []string{"ssh-ed25519 AAAA alice@host"}},
		KeyReply{},
		PamReply{Allowed: true},
		PamReply{Allowed: false},
		RateLimitReply{Limit: 5000, Remaining: 4999, Reset: 1735689600},
		PwReply{Login: "alice", UID: 1001, GID: 500, Home: "/home/alice", Shell: "/bin/bash"},
		SpReply{Login: "alice", Passwd: "*"},
		SectorsReply{Sectors: []SectorLine{
			{ID: 1, Name: "teamA", Kind: SectorTeam, GID: &gid, Group: &group,
				Members: []MemberRef{{ID: 10, Login: "alice"}, {ID: 11, Login: "bob"}}},
			{ID: 2, Name: "repoX", Kind: SectorRepo},
		}},
		GrReply{Sector: SectorLine{ID: 1, Name: "teamA", Kind: SectorTeam, GID: &gid, Group: &group,
			Members: []MemberRef{{ID: 10, Login: "alice"}}}},
	}

	for _, want := range cases {
		encoded, err := EncodeReply(want)
		if err != nil {
			t.Fatalf("encode %#v: %v", want, err)
		}
		if !strings.HasPrefix(encoded, "d:") {
			t.Fatalf("encoded reply missing d: prefix: %q", encoded)
		}
		got, err := ParseReply(strings.TrimPrefix(encoded, "d:"))
		if err != nil {
			t.Fatalf("parse %q: %v", encoded, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip mismatch: want %#v got %#v (frame %q)", want, got, encoded)
		}
	}
}

func TestParseRequestRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"bogus",
		"pw:",
		"pw:foo",
		"pw:uid=notanumber",
		"gr:bogus=1",
		"pw:ent=nope|1",
		"pw:ent=set|notapid",
	}
	for _, b := range bad {
		if _, err := ParseRequest(b); err == nil {
			t.Fatalf("expected error parsing %q", b)
		}
	}
}

func TestParseReplyRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"bogus",
		"pam:maybe",
		"ratelimit:1:2",
		"ratelimit:a:b:c",
		"pw:alice:notanumber:500:/home/alice:/bin/bash",
		"sectors:1:teamA:X\t\t\t",
	}
	for _, b := range bad {
		if _, err := ParseReply(b); err == nil {
			t.Fatalf("expected error parsing %q", b)
		}
	}
}

func TestSectorLineRoundTrip(t *testing.T) {
	gid := uint64(500)
	group := "teamA"
	want := SectorLine{
		ID: 3, Name: "teamA", Kind: SectorTeam, GID: &gid, Group: &group,
		Members: []MemberRef{{ID: 1, Login: "alice"}, {ID: 2, Login: "bob"}},
	}
	encoded := EncodeSectorLine(want)
	got, err := ParseSectorLine(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("mismatch: want %#v got %#v", want, got)
	}
}

func TestSectorLineWithoutGroupOrMembers(t *testing.T) {
	want := SectorLine{ID: 2, Name: "repoX", Kind: SectorRepo}
	encoded := EncodeSectorLine(want)
	got, err := ParseSectorLine(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("mismatch: want %#v got %#v", want, got)
	}
}

func TestSplitSingleFrameWhenSmall(t *testing.T) {
	frames := Split("short body")
	if len(frames) != 1 || frames[0] != "0:short body" {
		t.Fatalf("unexpected frames: %#v", frames)
	}
}

// TestDividedFrameFlagMatchesWireGrammar pins the literal flag bytes spec.md
// §4.B specifies ("1" more-follows, "0" last chunk) independently of
// Split/ParseDivided's own round trip, so an inversion of the two together
// (as opposed to a mismatch between them) cannot hide from the test suite.
func TestDividedFrameFlagMatchesWireGrammar(t *testing.T) {
	frames := Split(strings.Repeat("z", dividedMaxPayload*2+1))
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if !strings.HasPrefix(frames[0], "1:") || !strings.HasPrefix(frames[1], "1:") {
		t.Fatalf("expected non-final frames to carry the literal \"1\" more-follows flag, got %q and %q", frames[0], frames[1])
	}
	if !strings.HasPrefix(frames[2], "0:") {
		t.Fatalf("expected the last frame to carry the literal \"0\" final flag, got %q", frames[2])
	}
}

func TestSplitSegmentsOversizedBody(t *testing.T) {
	body := strings.Repeat("x", dividedMaxPayload*2+10)
	frames := Split(body)
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	for i, f := range frames {
		final, payload, err := ParseDivided(f)
		if err != nil {
			t.Fatalf("parse frame %d: %v", i, err)
		}
		if i < len(frames)-1 && final {
			t.Fatalf("frame %d: expected non-final", i)
		}
		if i == len(frames)-1 && !final {
			t.Fatalf("last frame: expected final")
		}
		if len(payload) == 0 {
			t.Fatalf("frame %d: empty payload", i)
		}
	}
}

func TestReassemblerRebuildsBody(t *testing.T) {
	body := strings.Repeat("y", dividedMaxPayload*2+3)
	frames := Split(body)

	var r Reassembler
	done := false
	for _, f := range frames {
		final, payload, err := ParseDivided(f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		done = r.Add(final, payload)
	}
	if !done {
		t.Fatalf("expected reassembler to report done on final frame")
	}
	if r.Body() != body {
		t.Fatalf("reassembled body mismatch")
	}
}

func TestIsContinuationRequest(t *testing.T) {
	if !IsContinuationRequest("c:cont") {
		t.Fatalf("expected c:cont to be recognized")
	}
	if IsContinuationRequest("c:key:alice") {
		t.Fatalf("expected c:key:alice to not be a continuation")
	}
}
