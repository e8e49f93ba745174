package edgarindex

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	epsvReplyRE = regexp.MustCompile(`\(\|\|\|(\d+)\|\)`)
	pasvReplyRE = regexp.MustCompile(`(\d+),(\d+),(\d+),(\d+),(\d+),(\d+)`)
)

// ftpSession is a minimal anonymous FTP conversation: just enough of the
// protocol to list directories (MLSD) and retrieve files (RETR) from the
// archive host. Timeouts live here, not in the walker; every operation
// renews a deadline on the control connection.
type ftpSession struct {
	conn    *textproto.Conn
	netConn net.Conn
	host    string
	timeout time.Duration
}

// dialFTP connects and authenticates an archive session. The user agent is
// sent as the anonymous password, the conventional contact courtesy.
func dialFTP(ctx context.Context, addr, userAgent string, timeout time.Duration) (Session, error) {
	var dialer net.Dialer
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("splitting address %s: %w", addr, err)
	}

	s := &ftpSession{
		conn:    textproto.NewConn(netConn),
		netConn: netConn,
		host:    host,
		timeout: timeout,
	}

	s.extendDeadline()
	if _, _, err := s.conn.ReadResponse(220); err != nil {
		s.conn.Close()
		return nil, fmt.Errorf("reading greeting: %w", err)
	}
	code, _, err := s.cmd(0, "USER anonymous")
	if err != nil {
		s.conn.Close()
		return nil, err
	}
	switch code {
	case 230:
		// already logged in
	case 331:
		if _, _, err := s.cmd(230, "PASS %s", userAgent); err != nil {
			s.conn.Close()
			return nil, err
		}
	default:
		s.conn.Close()
		return nil, fmt.Errorf("USER: unexpected reply %d", code)
	}
	if _, _, err := s.cmd(200, "TYPE I"); err != nil {
		s.conn.Close()
		return nil, err
	}
	return s, nil
}

// List returns the raw MLSD listing lines for one directory
func (s *ftpSession) List(dir string) ([]string, error) {
	data, err := s.openDataConn()
	if err != nil {
		return nil, err
	}
	if _, _, err := s.cmd(1, "MLSD %s", dir); err != nil {
		data.Close()
		return nil, err
	}

	if s.timeout > 0 {
		data.SetDeadline(time.Now().Add(s.timeout))
	}
	var lines []string
	scanner := bufio.NewScanner(data)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	scanErr := scanner.Err()
	data.Close()
	if scanErr != nil {
		return nil, fmt.Errorf("reading listing: %w", scanErr)
	}

	s.extendDeadline()
	if _, _, err := s.conn.ReadResponse(226); err != nil {
		return nil, fmt.Errorf("completing MLSD: %w", err)
	}
	return lines, nil
}

// Retr retrieves the contents of one file
func (s *ftpSession) Retr(file string) ([]byte, error) {
	data, err := s.openDataConn()
	if err != nil {
		return nil, err
	}
	if _, _, err := s.cmd(1, "RETR %s", file); err != nil {
		data.Close()
		return nil, err
	}

	if s.timeout > 0 {
		data.SetDeadline(time.Now().Add(s.timeout))
	}
	contents, readErr := io.ReadAll(data)
	data.Close()
	if readErr != nil {
		return nil, fmt.Errorf("reading %s: %w", file, readErr)
	}

	s.extendDeadline()
	if _, _, err := s.conn.ReadResponse(226); err != nil {
		return nil, fmt.Errorf("completing RETR: %w", err)
	}
	return contents, nil
}

// Close ends the session. The QUIT exchange is best effort; the connection
// closes regardless.
func (s *ftpSession) Close() error {
	s.extendDeadline()
	if err := s.conn.PrintfLine("QUIT"); err == nil {
		s.conn.ReadResponse(221)
	}
	return s.conn.Close()
}

// openDataConn negotiates a passive-mode data connection, preferring EPSV
// and falling back to PASV. The advertised PASV host is ignored; data
// connections always go to the control host.
func (s *ftpSession) openDataConn() (net.Conn, error) {
	port, err := s.passivePort()
	if err != nil {
		return nil, err
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(s.host, strconv.Itoa(port)), s.timeout)
	if err != nil {
		return nil, fmt.Errorf("dialing data connection: %w", err)
	}
	return conn, nil
}

func (s *ftpSession) passivePort() (int, error) {
	if _, msg, err := s.cmd(229, "EPSV"); err == nil {
		m := epsvReplyRE.FindStringSubmatch(msg)
		if m == nil {
			return 0, fmt.Errorf("unparseable EPSV reply %q", msg)
		}
		return strconv.Atoi(m[1])
	}

	_, msg, err := s.cmd(227, "PASV")
	if err != nil {
		return 0, err
	}
	m := pasvReplyRE.FindStringSubmatch(msg)
	if m == nil {
		return 0, fmt.Errorf("unparseable PASV reply %q", msg)
	}
	high, _ := strconv.Atoi(m[5])
	low, _ := strconv.Atoi(m[6])
	return high<<8 | low, nil
}

// cmd sends one control command and reads its reply. An expect of 0 accepts
// any reply code; a single digit accepts the whole reply class.
func (s *ftpSession) cmd(expect int, format string, args ...any) (int, string, error) {
	s.extendDeadline()
	if err := s.conn.PrintfLine(format, args...); err != nil {
		return 0, "", fmt.Errorf("%s: %w", commandVerb(format), err)
	}
	code, msg, err := s.conn.ReadResponse(expect)
	if err != nil {
		return code, msg, fmt.Errorf("%s: %w", commandVerb(format), err)
	}
	return code, msg, nil
}

func (s *ftpSession) extendDeadline() {
	if s.timeout > 0 {
		s.netConn.SetDeadline(time.Now().Add(s.timeout))
	}
}

func commandVerb(format string) string {
	verb, _, _ := strings.Cut(format, " ")
	return verb
}
