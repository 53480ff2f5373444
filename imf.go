// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

// FromKind distinguishes the Single/Multiple From variants, per
// spec.md §3.3.
type FromKind int

const (
	FromSingle FromKind = iota
	FromMultiple
)

// From models spec.md §3.3: From::Single{from, sender: Option<Mailbox>}
// when exactly one mailbox is listed, From::Multiple{from, sender} (sender
// mandatory) otherwise.
type From struct {
	Kind FromKind

	Single       MailboxRef
	SingleSender *MailboxRef // nil if absent

	Multiple       []MailboxRef
	MultipleSender MailboxRef
}

// Sender returns the effective originator: the declared Sender if present,
// otherwise the single From, otherwise the mandatory Sender of the
// multi-From form, per spec.md §3.3.
func (f From) Sender() MailboxRef {
	if f.Kind == FromSingle {
		if f.SingleSender != nil {
			return *f.SingleSender
		}
		return f.Single
	}
	return f.MultipleSender
}

// IMF is the assembled Internet Message Format record, per spec.md §3.1.
type IMF struct {
	Date DateTime
	From From

	ReplyTo []AddressRef
	To      []AddressRef
	Cc      []AddressRef

	Bcc    []AddressRef
	HasBcc bool // distinguishes "no Bcc field" from "Bcc: " (empty list)

	MessageID    *MessageID
	InReplyTo    []MessageID
	References   []MessageID

	Subject  *Unstructured
	Comments []Unstructured
	Keywords []Phrase // one PhraseList per Keywords occurrence, flattened in input order

	Trace []TraceBlock

	MIMEVersionMajor int
	MIMEVersionMinor int
	HasMIMEVersion   bool
}

// assembleState is the mutable scratch record used while folding the
// ordered field list into an IMF, mirroring derat-rendmail/message.go's
// headerData accumulate-then-freeze pattern (spec.md §3.4: "the builder
// uses private mutable scratch records then freezes into the public
// IMF/AnyPart").
type assembleState struct {
	haveDate   bool
	date       DateTime
	fromMBs    []MailboxRef
	haveFrom   bool
	haveSender bool
	sender     MailboxRef

	haveReplyTo bool
	replyTo     []AddressRef
	to          []AddressRef
	cc          []AddressRef

	haveBcc bool
	bcc     []AddressRef

	haveMsgID bool
	msgID     MessageID

	haveInReplyTo bool
	inReplyTo     []MessageID
	haveRefs      bool
	references    []MessageID

	haveSubject bool
	subject     Unstructured
	comments    []Unstructured
	keywords    []Phrase

	traceComplete bool // latches once a non-trace field is seen (Invariant 5)
	curBlock      *TraceBlock
	blocks        []TraceBlock

	haveVersion bool
	verMajor    int
	verMinor    int
}

// AssembleIMF folds an ordered, already-dispatched field list into an IMF
// record, applying the cardinality rules of spec.md §3.2 Invariant 6 (at
// most one copy of each single-valued field, silently dropping repeats;
// To/Cc append) and the trace-bracketing rule of Invariant 5. Fields
// whose grammar failed (ParsedField.Err != nil) are skipped here — they
// remain visible only via the original ordered field list retained by the
// caller for re-emission.
//
// Finalization fails (returning a *FinalizeError) if Date or From is
// missing, or if multiple From mailboxes are listed with no Sender
// (spec.md §3.2 Invariants 3-4).
func AssembleIMF(fields []ParsedField) (IMF, error) {
	var st assembleState

	closeTraceBlock := func() {
		if st.curBlock != nil {
			if len(st.curBlock.Received) > 0 {
				st.blocks = append(st.blocks, *st.curBlock)
			}
			st.curBlock = nil
		}
	}

	for _, f := range fields {
		if f.Err != nil {
			continue
		}
		switch f.Kind {
		case FieldReturnPath:
			if st.traceComplete {
				continue
			}
			closeTraceBlock()
			st.curBlock = &TraceBlock{ReturnPath: f.ReturnPath, HasReturnPath: true}
			continue
		case FieldReceived:
			if st.traceComplete {
				continue
			}
			if st.curBlock == nil {
				st.curBlock = &TraceBlock{}
			}
			st.curBlock.Received = append(st.curBlock.Received, f.Received)
			continue
		}

		// Any non-trace field latches the trace-complete sentinel.
		if !st.traceComplete {
			closeTraceBlock()
			st.traceComplete = true
		}

		switch f.Kind {
		case FieldDate:
			if st.haveDate {
				continue
			}
			st.haveDate, st.date = true, f.Date
		case FieldFrom:
			if st.haveFrom {
				continue
			}
			st.haveFrom, st.fromMBs = true, f.Mailboxes
		case FieldSender:
			if st.haveSender {
				continue
			}
			st.haveSender, st.sender = true, f.Mailbox
		case FieldReplyTo:
			if st.haveReplyTo {
				continue
			}
			st.haveReplyTo, st.replyTo = true, f.Addresses
		case FieldTo:
			st.to = append(st.to, f.Addresses...)
		case FieldCc:
			st.cc = append(st.cc, f.Addresses...)
		case FieldBcc:
			if st.haveBcc {
				continue
			}
			st.haveBcc, st.bcc = true, f.Addresses
		case FieldMessageID:
			if st.haveMsgID {
				continue
			}
			st.haveMsgID, st.msgID = true, f.MessageIDVal
		case FieldInReplyTo:
			if st.haveInReplyTo {
				continue
			}
			st.haveInReplyTo, st.inReplyTo = true, f.MessageIDs
		case FieldReferences:
			if st.haveRefs {
				continue
			}
			st.haveRefs, st.references = true, f.MessageIDs
		case FieldSubject:
			if st.haveSubject {
				continue
			}
			st.haveSubject, st.subject = true, f.Text
		case FieldComments:
			st.comments = append(st.comments, f.Text)
		case FieldKeywords:
			st.keywords = append(st.keywords, f.Phrases...)
		case FieldMIMEVersion:
			if st.haveVersion {
				continue
			}
			st.haveVersion, st.verMajor, st.verMinor = true, f.VersionMajor, f.VersionMinor
		}
	}
	closeTraceBlock()

	if !st.haveDate {
		return IMF{}, &FinalizeError{Text: "missing Date"}
	}
	if !st.haveFrom || len(st.fromMBs) == 0 {
		return IMF{}, &FinalizeError{Text: "missing From"}
	}

	var from From
	if len(st.fromMBs) == 1 {
		from.Kind = FromSingle
		from.Single = st.fromMBs[0]
		if st.haveSender {
			s := st.sender
			from.SingleSender = &s
		}
	} else {
		if !st.haveSender {
			return IMF{}, &FinalizeError{Text: "multiple From mailboxes require a Sender"}
		}
		from.Kind = FromMultiple
		from.Multiple = st.fromMBs
		from.MultipleSender = st.sender
	}

	imf := IMF{
		Date:             st.date,
		From:             from,
		ReplyTo:          st.replyTo,
		To:               st.to,
		Cc:               st.cc,
		Bcc:              st.bcc,
		HasBcc:           st.haveBcc,
		InReplyTo:        st.inReplyTo,
		References:       st.references,
		Comments:         st.comments,
		Keywords:         st.keywords,
		Trace:            st.blocks,
		MIMEVersionMajor: 1,
		MIMEVersionMinor: 0,
	}
	if st.haveMsgID {
		id := st.msgID
		imf.MessageID = &id
	}
	if st.haveSubject {
		sub := st.subject
		imf.Subject = &sub
	}
	if st.haveVersion {
		// MIME-Version explicit value overrides the 1.0 default set above.
		imf.MIMEVersionMajor, imf.MIMEVersionMinor = st.verMajor, st.verMinor
	}
	imf.HasMIMEVersion = true // defaults to 1.0 when missing, per spec.md Invariant 7
	return imf, nil
}

// buildMIME aggregates the MIME-bucket fields (Content-Type and friends)
// from an ordered field list into a MIME value, applying the same
// single-valued cardinality rule as AssembleIMF (spec.md §3.2 Invariant 6
// extends naturally to MIME fields, all of which are single-valued).
func buildMIME(fields []ParsedField, rawHeader []byte) MIME {
	var (
		haveType  bool
		naive     NaiveType
		haveTE    bool
		mech      = Mechanism{Kind: Mechanism7Bit}
		haveID    bool
		id        MessageID
		haveDesc  bool
		desc      Unstructured
		haveDisp  bool
		disp      NaiveType
	)
	var order []string
	for _, f := range fields {
		switch f.Kind {
		case FieldContentType:
			order = append(order, f.Name)
			if haveType || f.Err != nil {
				continue
			}
			haveType, naive = true, f.Naive
		case FieldContentTransferEncoding:
			order = append(order, f.Name)
			if haveTE {
				continue
			}
			haveTE, mech = true, f.Mechanism
		case FieldContentID:
			order = append(order, f.Name)
			if haveID || f.Err != nil {
				continue
			}
			haveID, id = true, f.MessageIDVal
		case FieldContentDescription:
			order = append(order, f.Name)
			if haveDesc {
				continue
			}
			haveDesc, desc = true, f.Text
		case FieldContentDisposition:
			order = append(order, f.Name)
			if haveDisp || f.Err != nil {
				continue
			}
			haveDisp, disp = true, f.Naive
		}
	}

	typ := InterpretedType{Kind: KindText, TextSub: TextPlain, Charset: Inferred(CharsetUSASCII)}
	if haveType {
		typ = Interpret(naive)
	}
	m := MIME{
		Type:             typ,
		Naive:            naive,
		TransferEncoding: mech,
		RawHeader:        rawHeader,
		FieldOrder:       order,
	}
	if haveID {
		m.ID = &id
	}
	if haveDesc {
		m.Description, m.HasDescription = desc, true
	}
	if haveDisp {
		d := disp
		m.Disposition = &d
	}
	return m
}
