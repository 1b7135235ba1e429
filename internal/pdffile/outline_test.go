package pdffile

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"
)

// pdfBuilder assembles a minimal PDF in memory, recording object offsets
// so the xref table comes out correct.
type pdfBuilder struct {
	buf     bytes.Buffer
	offsets map[int]int
	max     int
}

func newPDFBuilder() *pdfBuilder {
	b := &pdfBuilder{offsets: make(map[int]int)}
	b.buf.WriteString("%PDF-1.4\n")
	return b
}

func (b *pdfBuilder) obj(num int, body string) {
	b.offsets[num] = b.buf.Len()
	if num > b.max {
		b.max = num
	}
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func (b *pdfBuilder) bytes() []byte {
	start := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", b.max+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= b.max; n++ {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", b.offsets[n])
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", b.max+1, start)
	return b.buf.Bytes()
}

// outlinePDF builds a one-page PDF with a two-entry outline. When cyclic,
// the second entry's Next points back at the first.
func outlinePDF(cyclic bool) []byte {
	b := newPDFBuilder()
	b.obj(1, "<< /Type /Catalog /Pages 2 0 R /Outlines 4 0 R >>")
	b.obj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.obj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	b.obj(4, "<< /Type /Outlines /First 5 0 R /Last 6 0 R >>")
	b.obj(5, "<< /Title (Alpha) /Parent 4 0 R /Next 6 0 R /Dest [3 0 R /Fit] >>")
	if cyclic {
		b.obj(6, "<< /Title (Beta) /Parent 4 0 R /Next 5 0 R >>")
	} else {
		b.obj(6, "<< /Title (Beta) /Parent 4 0 R >>")
	}
	return b.bytes()
}

func TestOutlineWalk(t *testing.T) {
	f, err := NewFromBytes(outlinePDF(false))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer f.Close()

	nodes, err := f.Outline(context.Background())
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("outline has %d nodes, want 2", len(nodes))
	}
	if nodes[0].Title != "Alpha" || nodes[1].Title != "Beta" {
		t.Errorf("titles = %q, %q", nodes[0].Title, nodes[1].Title)
	}
	if nodes[0].Dest == nil {
		t.Fatal("first entry should carry a destination array")
	}

	idx, err := f.PageIndexOfDestination(context.Background(), nodes[0].Dest)
	if err != nil {
		t.Fatalf("PageIndexOfDestination: %v", err)
	}
	if idx != 0 {
		t.Errorf("page index = %d, want 0", idx)
	}
}

func TestOutlineCycleTerminates(t *testing.T) {
	f, err := NewFromBytes(outlinePDF(true))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer f.Close()

	done := make(chan int, 1)
	go func() {
		nodes, err := f.Outline(context.Background())
		if err != nil {
			t.Errorf("Outline: %v", err)
		}
		done <- len(nodes)
	}()

	select {
	case n := <-done:
		if n == 0 || n > maxOutlineNodes {
			t.Errorf("outline has %d nodes, want between 1 and %d", n, maxOutlineNodes)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("outline walk did not terminate on a cyclic sibling chain")
	}
}
