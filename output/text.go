package output

import (
	"io"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

// WriteFastqRecord writes one FASTQ record (`@name\nseq\n+\nqual\n`) to
// w using bare '\n' line endings, per §6.2 ("Text formats use \n line
// endings").
func WriteFastqRecord(w io.Writer, r read.Read) error {
	if _, err := w.Write([]byte{'@'}); err != nil {
		return err
	}
	if _, err := w.Write(r.Name()); err != nil {
		return err
	}
	if _, err := w.Write([]byte{'\n'}); err != nil {
		return err
	}
	if _, err := w.Write(r.Seq()); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n+\n")); err != nil {
		return err
	}
	if _, err := w.Write(r.Qual()); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}

// WriteFastaRecord writes one FASTA record (`>name\nseq\n`); quality is
// discarded, since FASTA carries no quality line.
func WriteFastaRecord(w io.Writer, r read.Read) error {
	if _, err := w.Write([]byte{'>'}); err != nil {
		return err
	}
	if _, err := w.Write(r.Name()); err != nil {
		return err
	}
	if _, err := w.Write([]byte{'\n'}); err != nil {
		return err
	}
	if _, err := w.Write(r.Seq()); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}
